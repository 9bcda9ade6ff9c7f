package query

import (
	"fmt"

	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// ListOrganizationsQuery represents the query to list organizations
type ListOrganizationsQuery struct {
	Limit  int
	Offset int
}

// ListOrganizationsHandler handles list organizations query
type ListOrganizationsHandler struct {
	repo domain.OrganizationRepository
}

// NewListOrganizationsHandler creates a new list organizations handler
func NewListOrganizationsHandler(repo domain.OrganizationRepository) *ListOrganizationsHandler {
	return &ListOrganizationsHandler{repo: repo}
}

// Handle executes the list organizations query
func (h *ListOrganizationsHandler) Handle(q ListOrganizationsQuery) ([]domain.Organization, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}

	orgs, err := h.repo.FindAll(q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	return orgs, nil
}

// ListLocationsQuery represents the query to list an organization's sales points
type ListLocationsQuery struct {
	OrganizationID uint
}

// ListLocationsHandler handles list locations query
type ListLocationsHandler struct {
	locs domain.LocationRepository
}

// NewListLocationsHandler creates a new list locations handler
func NewListLocationsHandler(locs domain.LocationRepository) *ListLocationsHandler {
	return &ListLocationsHandler{locs: locs}
}

// Handle executes the list locations query
func (h *ListLocationsHandler) Handle(q ListLocationsQuery) ([]domain.Location, error) {
	return h.locs.FindAllByOrganization(q.OrganizationID)
}
