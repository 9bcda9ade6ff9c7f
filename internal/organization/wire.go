//go:build wireinject
// +build wireinject

package organization

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/organization/delivery/http"
	"github.com/prognoza/forecast-platform/internal/organization/domain"
	"github.com/prognoza/forecast-platform/internal/organization/repository"
)

// ProvideOrganizationRepository provides the organization repository
func ProvideOrganizationRepository(db *gorm.DB) domain.OrganizationRepository {
	return repository.NewGormOrganizationRepository(db)
}

// ProvideLocationRepository provides the location repository
func ProvideLocationRepository(db *gorm.DB) domain.LocationRepository {
	return repository.NewGormLocationRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideOrganizationRepository,
	ProvideLocationRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.OrganizationHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewOrganizationHandler,
	)
	return nil, nil
}
