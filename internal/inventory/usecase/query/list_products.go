package query

import (
	"fmt"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// ListProductsQuery represents the query to list an organization's
// products
type ListProductsQuery struct {
	OrganizationID uint
	Limit          int
	Offset         int
}

// ListProductsHandler handles list products query
type ListProductsHandler struct {
	repo domain.ProductRepository
}

// NewListProductsHandler creates a new list products handler
func NewListProductsHandler(repo domain.ProductRepository) *ListProductsHandler {
	return &ListProductsHandler{repo: repo}
}

// Handle executes the list products query
func (h *ListProductsHandler) Handle(q ListProductsQuery) ([]domain.Product, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	products, err := h.repo.FindAll(q.OrganizationID, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}
