package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// RecordOperationCommand represents the command to record a sale or
// supply event
type RecordOperationCommand struct {
	OrganizationID uint
	ProductID      uint
	LocationID     uint
	Kind           string
	Quantity       float64
	Date           *time.Time
	CostPrice      *float64
	TotalAmount    *float64
}

// RecordOperationHandler handles operation recording
type RecordOperationHandler struct {
	products   domain.ProductRepository
	operations domain.OperationRepository
}

// NewRecordOperationHandler creates a new record operation handler
func NewRecordOperationHandler(products domain.ProductRepository, operations domain.OperationRepository) *RecordOperationHandler {
	return &RecordOperationHandler{products: products, operations: operations}
}

// Handle executes the record operation command
func (h *RecordOperationHandler) Handle(cmd RecordOperationCommand) (*domain.Operation, error) {
	if cmd.Kind != domain.OperationSale && cmd.Kind != domain.OperationSupply {
		return nil, fmt.Errorf("operation type must be sale or supply")
	}
	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}
	if _, err := h.products.FindByID(cmd.OrganizationID, cmd.ProductID); err != nil {
		return nil, fmt.Errorf("product not found")
	}

	op := &domain.Operation{
		OrganizationID: cmd.OrganizationID,
		ProductID:      cmd.ProductID,
		LocationID:     cmd.LocationID,
		Kind:           cmd.Kind,
		Quantity:       cmd.Quantity,
		Date:           cmd.Date,
		CostPrice:      cmd.CostPrice,
		TotalAmount:    cmd.TotalAmount,
	}
	if op.Date == nil {
		now := time.Now()
		op.Date = &now
	}

	if err := h.operations.Create(op); err != nil {
		return nil, fmt.Errorf("failed to record operation: %w", err)
	}

	return op, nil
}
