package command

import (
	"fmt"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// DeleteProductCommand represents the command to delete a product
type DeleteProductCommand struct {
	OrganizationID uint
	ID             uint
}

// DeleteProductHandler handles product deletion command
type DeleteProductHandler struct {
	repo domain.ProductRepository
}

// NewDeleteProductHandler creates a new delete product handler
func NewDeleteProductHandler(repo domain.ProductRepository) *DeleteProductHandler {
	return &DeleteProductHandler{repo: repo}
}

// Handle executes the delete product command
func (h *DeleteProductHandler) Handle(cmd DeleteProductCommand) error {
	if _, err := h.repo.FindByID(cmd.OrganizationID, cmd.ID); err != nil {
		return fmt.Errorf("product not found")
	}

	if err := h.repo.Delete(cmd.OrganizationID, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
