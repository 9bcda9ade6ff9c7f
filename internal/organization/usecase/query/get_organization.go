package query

import (
	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// GetOrganizationQuery represents the query to get an organization by id
type GetOrganizationQuery struct {
	ID uint
}

// GetOrganizationHandler handles get organization query
type GetOrganizationHandler struct {
	repo domain.OrganizationRepository
}

// NewGetOrganizationHandler creates a new get organization handler
func NewGetOrganizationHandler(repo domain.OrganizationRepository) *GetOrganizationHandler {
	return &GetOrganizationHandler{repo: repo}
}

// Handle executes the get organization query
func (h *GetOrganizationHandler) Handle(q GetOrganizationQuery) (*domain.Organization, error) {
	return h.repo.FindByID(q.ID)
}
