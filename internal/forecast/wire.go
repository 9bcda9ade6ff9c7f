//go:build wireinject
// +build wireinject

package forecast

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/forecast/assembler"
	"github.com/prognoza/forecast-platform/internal/forecast/client"
	"github.com/prognoza/forecast-platform/internal/forecast/delivery/http"
	"github.com/prognoza/forecast-platform/internal/forecast/domain"
	"github.com/prognoza/forecast-platform/internal/forecast/repository"
	"github.com/prognoza/forecast-platform/internal/forecast/usecase/command"
	"github.com/prognoza/forecast-platform/internal/forecast/usecase/query"
	inventorydomain "github.com/prognoza/forecast-platform/internal/inventory/domain"
	inventoryrepo "github.com/prognoza/forecast-platform/internal/inventory/repository"
	"github.com/prognoza/forecast-platform/kafka"
)

// ProvidePredictionRunRepository provides the prediction run repository
func ProvidePredictionRunRepository(db *gorm.DB) domain.PredictionRunRepository {
	return repository.NewGormPredictionRunRepository(db)
}

// ProvidePredictionRepository provides the prediction repository
func ProvidePredictionRepository(db *gorm.DB) domain.PredictionRepository {
	return repository.NewGormPredictionRepository(db)
}

// ProvideProductRepository provides the product repository
func ProvideProductRepository(db *gorm.DB) inventorydomain.ProductRepository {
	return inventoryrepo.NewGormProductRepository(db)
}

// ProvideOperationRepository provides the operation repository
func ProvideOperationRepository(db *gorm.DB) inventorydomain.OperationRepository {
	return inventoryrepo.NewGormOperationRepository(db)
}

// ProvideAssembler provides the ML payload assembler
func ProvideAssembler(products inventorydomain.ProductRepository, operations inventorydomain.OperationRepository) *assembler.Assembler {
	return assembler.NewAssembler(products, operations)
}

// ProvidePredictor provides the ML service client
func ProvidePredictor(mlServiceURL string) command.Predictor {
	return client.NewMLClient(mlServiceURL)
}

var RepositorySet = wire.NewSet(
	ProvidePredictionRunRepository,
	ProvidePredictionRepository,
	ProvideProductRepository,
	ProvideOperationRepository,
)

var UsecaseSet = wire.NewSet(
	ProvideAssembler,
	ProvidePredictor,
	command.NewPredictSalesHandler,
	query.NewGetForecastDataHandler,
	query.NewGetForecastHistoryHandler,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, mlServiceURL string, publisher kafka.EventPublisher) (*http.ForecastHandler, error) {
	wire.Build(
		RepositorySet,
		UsecaseSet,
		http.NewForecastHandler,
	)
	return nil, nil
}
