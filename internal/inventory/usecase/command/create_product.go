package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// CreateProductCommand represents the command to create a new product
type CreateProductCommand struct {
	OrganizationID uint
	Name           string
	Code           string
	Category       string
	Price          float64
	Quantity       int
}

// CreateProductHandler handles product creation command
type CreateProductHandler struct {
	repo domain.ProductRepository
}

// NewCreateProductHandler creates a new create product handler
func NewCreateProductHandler(repo domain.ProductRepository) *CreateProductHandler {
	return &CreateProductHandler{repo: repo}
}

// Handle executes the create product command
func (h *CreateProductHandler) Handle(cmd CreateProductCommand) (*domain.Product, error) {
	if cmd.OrganizationID == 0 {
		return nil, fmt.Errorf("organization is required")
	}
	if cmd.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if cmd.Code == "" {
		return nil, fmt.Errorf("product code is required")
	}
	if cmd.Price < 0 {
		return nil, fmt.Errorf("price cannot be negative")
	}
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	// Code is unique per organization
	if existing, _ := h.repo.FindByCode(cmd.OrganizationID, cmd.Code); existing != nil {
		return nil, fmt.Errorf("product code already exists")
	}

	category := cmd.Category
	if category == "" {
		category = "Прочее"
	}

	product := &domain.Product{
		OrganizationID: cmd.OrganizationID,
		Name:           cmd.Name,
		Code:           cmd.Code,
		Category:       category,
		Price:          cmd.Price,
		Quantity:       cmd.Quantity,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}
