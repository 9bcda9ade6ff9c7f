//go:build wireinject
// +build wireinject

package upload

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	inventorydomain "github.com/prognoza/forecast-platform/internal/inventory/domain"
	inventoryrepo "github.com/prognoza/forecast-platform/internal/inventory/repository"
	"github.com/prognoza/forecast-platform/internal/upload/delivery/http"
)

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) inventorydomain.ProductRepository {
	return inventoryrepo.NewGormProductRepository(db)
}

// ProvideOperationRepository provides the operation repository
func ProvideOperationRepository(db *gorm.DB) inventorydomain.OperationRepository {
	return inventoryrepo.NewGormOperationRepository(db)
}

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB) (*http.UploadHandler, error) {
	wire.Build(
		ProvideProductRepository,
		ProvideOperationRepository,
		http.NewUploadHandler,
	)
	return nil, nil
}
