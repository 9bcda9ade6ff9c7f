package query

import (
	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// GetProductQuery represents the query to get a single product
type GetProductQuery struct {
	OrganizationID uint
	ID             uint
}

// GetProductHandler handles get product query
type GetProductHandler struct {
	repo domain.ProductRepository
}

// NewGetProductHandler creates a new get product handler
func NewGetProductHandler(repo domain.ProductRepository) *GetProductHandler {
	return &GetProductHandler{repo: repo}
}

// Handle executes the get product query
func (h *GetProductHandler) Handle(q GetProductQuery) (*domain.Product, error) {
	return h.repo.FindByID(q.OrganizationID, q.ID)
}
