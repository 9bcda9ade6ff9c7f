package command

import (
	"fmt"
	"time"

	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// CreateLocationCommand represents the command to add a sales point
type CreateLocationCommand struct {
	OrganizationID uint
	Name           string
	Address        string
}

// CreateLocationHandler handles location creation command
type CreateLocationHandler struct {
	orgs domain.OrganizationRepository
	locs domain.LocationRepository
}

// NewCreateLocationHandler creates a new create location handler
func NewCreateLocationHandler(orgs domain.OrganizationRepository, locs domain.LocationRepository) *CreateLocationHandler {
	return &CreateLocationHandler{orgs: orgs, locs: locs}
}

// Handle executes the create location command
func (h *CreateLocationHandler) Handle(cmd CreateLocationCommand) (*domain.Location, error) {
	if cmd.Name == "" {
		return nil, fmt.Errorf("location name is required")
	}
	if cmd.Address == "" {
		return nil, fmt.Errorf("location address is required")
	}

	if _, err := h.orgs.FindByID(cmd.OrganizationID); err != nil {
		return nil, fmt.Errorf("organization not found")
	}

	loc := &domain.Location{
		OrganizationID: cmd.OrganizationID,
		Name:           cmd.Name,
		Address:        cmd.Address,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := h.locs.Create(loc); err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	return loc, nil
}

// DeleteLocationCommand represents the command to remove a sales point
type DeleteLocationCommand struct {
	OrganizationID uint
	ID             uint
}

// DeleteLocationHandler handles location deletion command
type DeleteLocationHandler struct {
	locs domain.LocationRepository
}

// NewDeleteLocationHandler creates a new delete location handler
func NewDeleteLocationHandler(locs domain.LocationRepository) *DeleteLocationHandler {
	return &DeleteLocationHandler{locs: locs}
}

// Handle executes the delete location command
func (h *DeleteLocationHandler) Handle(cmd DeleteLocationCommand) error {
	if _, err := h.locs.FindByID(cmd.OrganizationID, cmd.ID); err != nil {
		return fmt.Errorf("location not found")
	}

	if err := h.locs.Delete(cmd.OrganizationID, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	return nil
}
