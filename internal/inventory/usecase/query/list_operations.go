package query

import (
	"fmt"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// ListOperationsQuery represents the query to list recorded operations
type ListOperationsQuery struct {
	OrganizationID uint
	ProductID      uint // optional filter
	Limit          int
	Offset         int
}

// ListOperationsHandler handles list operations query
type ListOperationsHandler struct {
	repo domain.OperationRepository
}

// NewListOperationsHandler creates a new list operations handler
func NewListOperationsHandler(repo domain.OperationRepository) *ListOperationsHandler {
	return &ListOperationsHandler{repo: repo}
}

// Handle executes the list operations query
func (h *ListOperationsHandler) Handle(q ListOperationsQuery) ([]domain.Operation, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}

	if q.ProductID != 0 {
		ops, err := h.repo.FindByProduct(q.OrganizationID, q.ProductID, q.Limit, q.Offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list operations: %w", err)
		}
		return ops, nil
	}

	ops, err := h.repo.FindAllByOrganization(q.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	if q.Offset >= len(ops) {
		return []domain.Operation{}, nil
	}
	end := q.Offset + q.Limit
	if end > len(ops) {
		end = len(ops)
	}
	return ops[q.Offset:end], nil
}
