package command

import (
	"fmt"

	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// DeleteOrganizationCommand represents the command to delete an organization
type DeleteOrganizationCommand struct {
	ID uint
}

// DeleteOrganizationHandler handles organization deletion command
type DeleteOrganizationHandler struct {
	repo domain.OrganizationRepository
}

// NewDeleteOrganizationHandler creates a new delete organization handler
func NewDeleteOrganizationHandler(repo domain.OrganizationRepository) *DeleteOrganizationHandler {
	return &DeleteOrganizationHandler{repo: repo}
}

// Handle executes the delete organization command (soft delete)
func (h *DeleteOrganizationHandler) Handle(cmd DeleteOrganizationCommand) error {
	if _, err := h.repo.FindByID(cmd.ID); err != nil {
		return fmt.Errorf("organization not found")
	}

	if err := h.repo.Delete(cmd.ID); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}

	return nil
}
