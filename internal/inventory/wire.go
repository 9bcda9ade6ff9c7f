//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/inventory/delivery/http"
	"github.com/prognoza/forecast-platform/internal/inventory/domain"
	"github.com/prognoza/forecast-platform/internal/inventory/repository"
	"github.com/prognoza/forecast-platform/kafka"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) domain.ProductRepository {
	return repository.NewGormProductRepository(db)
}

// ProvideOperationRepository provides the operation repository
func ProvideOperationRepository(db *gorm.DB) domain.OperationRepository {
	return repository.NewGormOperationRepository(db)
}

var RepositorySet = wire.NewSet(
	ProvideProductRepository,
	ProvideOperationRepository,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher kafka.EventPublisher) (*http.InventoryHandler, error) {
	wire.Build(
		RepositorySet,
		http.NewInventoryHandler,
	)
	return nil, nil
}
