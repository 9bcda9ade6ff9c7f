package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// CreateOrganizationCommand represents the command to create an organization
type CreateOrganizationCommand struct {
	Name    string
	INN     string
	Address string
}

// CreateOrganizationHandler handles organization creation command
type CreateOrganizationHandler struct {
	repo domain.OrganizationRepository
}

// NewCreateOrganizationHandler creates a new create organization handler
func NewCreateOrganizationHandler(repo domain.OrganizationRepository) *CreateOrganizationHandler {
	return &CreateOrganizationHandler{repo: repo}
}

// Handle executes the create organization command
func (h *CreateOrganizationHandler) Handle(cmd CreateOrganizationCommand) (*domain.Organization, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("organization name is required")
	}

	if cmd.INN != "" {
		if existing, _ := h.repo.FindByINN(cmd.INN); existing != nil {
			return nil, fmt.Errorf("organization with INN %s already exists", cmd.INN)
		}
	}

	org := &domain.Organization{
		Name:      cmd.Name,
		INN:       cmd.INN,
		Address:   cmd.Address,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.repo.Create(org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}
