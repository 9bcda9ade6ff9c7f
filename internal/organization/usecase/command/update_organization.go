package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// UpdateOrganizationCommand represents the command to update an organization
type UpdateOrganizationCommand struct {
	ID      uint
	Name    string
	Address string
}

// UpdateOrganizationHandler handles organization update command
type UpdateOrganizationHandler struct {
	repo domain.OrganizationRepository
}

// NewUpdateOrganizationHandler creates a new update organization handler
func NewUpdateOrganizationHandler(repo domain.OrganizationRepository) *UpdateOrganizationHandler {
	return &UpdateOrganizationHandler{repo: repo}
}

// Handle executes the update organization command
func (h *UpdateOrganizationHandler) Handle(cmd UpdateOrganizationCommand) (*domain.Organization, error) {
	org, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		return nil, fmt.Errorf("organization not found")
	}

	if cmd.Name != "" {
		org.Name = cmd.Name
	}
	if cmd.Address != "" {
		org.Address = cmd.Address
	}
	org.UpdatedAt = time.Now()

	if err := h.repo.Update(org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}

	return org, nil
}
