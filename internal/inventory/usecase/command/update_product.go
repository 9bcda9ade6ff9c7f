package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// UpdateProductCommand represents the command to update a product
type UpdateProductCommand struct {
	OrganizationID uint
	ID             uint
	Name           string
	Code           string
	Category       string
	Price          float64
	Quantity       int
}

// UpdateProductHandler handles product update command
type UpdateProductHandler struct {
	repo domain.ProductRepository
}

// NewUpdateProductHandler creates a new update product handler
func NewUpdateProductHandler(repo domain.ProductRepository) *UpdateProductHandler {
	return &UpdateProductHandler{repo: repo}
}

// Handle executes the update product command
func (h *UpdateProductHandler) Handle(cmd UpdateProductCommand) (*domain.Product, error) {
	product, err := h.repo.FindByID(cmd.OrganizationID, cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("product not found")
	}

	if cmd.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	if cmd.Name != "" {
		product.Name = cmd.Name
	}
	if cmd.Code != "" && cmd.Code != product.Code {
		if existing, _ := h.repo.FindByCode(cmd.OrganizationID, cmd.Code); existing != nil {
			return nil, fmt.Errorf("product code already exists")
		}
		product.Code = cmd.Code
	}
	if cmd.Category != "" {
		product.Category = cmd.Category
	}
	product.Price = cmd.Price
	product.Quantity = cmd.Quantity
	product.UpdatedAt = time.Now()

	if err := h.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}
