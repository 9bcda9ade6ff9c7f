package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// UpdateQuantityCommand adjusts a product's stock level and records the
// change as an operation so it appears in the sales history.
type UpdateQuantityCommand struct {
	OrganizationID uint
	ProductID      uint
	Quantity       int
	Kind           string // sale or supply
}

// UpdateQuantityHandler handles stock level updates
type UpdateQuantityHandler struct {
	products   domain.ProductRepository
	operations domain.OperationRepository
}

// NewUpdateQuantityHandler creates a new update quantity handler
func NewUpdateQuantityHandler(products domain.ProductRepository, operations domain.OperationRepository) *UpdateQuantityHandler {
	return &UpdateQuantityHandler{products: products, operations: operations}
}

// Handle executes the quantity update. The operation row records the
// delta against the previous stock level.
func (h *UpdateQuantityHandler) Handle(cmd UpdateQuantityCommand) (*domain.Product, error) {
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	if cmd.Kind != domain.OperationSale && cmd.Kind != domain.OperationSupply {
		return nil, fmt.Errorf("operation type must be sale or supply")
	}

	previous, err := h.products.FindByID(cmd.OrganizationID, cmd.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product not found")
	}

	updated, err := h.products.UpdateQuantity(cmd.OrganizationID, cmd.ProductID, cmd.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update quantity: %w", err)
	}

	now := time.Now()
	delta := float64(cmd.Quantity - previous.Quantity)
	if delta < 0 {
		delta = -delta
	}
	op := &domain.Operation{
		OrganizationID: cmd.OrganizationID,
		ProductID:      cmd.ProductID,
		Kind:           cmd.Kind,
		Quantity:       delta,
		Date:           &now,
	}
	if err := h.operations.Create(op); err != nil {
		// The stock update already succeeded; a missing history row is
		// worth reporting but not worth failing the request over.
		return updated, fmt.Errorf("quantity updated but history not recorded: %w", err)
	}

	updated.Quantity = cmd.Quantity
	return updated, nil
}
