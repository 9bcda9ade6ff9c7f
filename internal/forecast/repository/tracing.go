package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
)

var tracer = otel.Tracer("forecast-repository")

// GormPredictionRunRepositoryWithTracing wraps GormPredictionRunRepository
// with spans around the persistence step of the forecast flow.
type GormPredictionRunRepositoryWithTracing struct {
	*GormPredictionRunRepository
}

func NewGormPredictionRunRepositoryWithTracing(db *gorm.DB) *GormPredictionRunRepositoryWithTracing {
	return &GormPredictionRunRepositoryWithTracing{
		GormPredictionRunRepository: NewGormPredictionRunRepository(db),
	}
}

// CreateWithContext traces a run insert.
func (r *GormPredictionRunRepositoryWithTracing) CreateWithContext(ctx context.Context, run *domain.PredictionRun) error {
	_, span := tracer.Start(ctx, "repository.CreatePredictionRun",
		trace.WithAttributes(
			attribute.Int("organization.id", int(run.OrganizationID)),
			attribute.Int("forecast.days_predicted", run.DaysPredicted),
		),
	)
	defer span.End()

	err := r.GormPredictionRunRepository.Create(run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("prediction_run.id", int(run.ID)))
	return nil
}

// GormPredictionRepositoryWithTracing wraps GormPredictionRepository
// with spans around the bulk prediction insert.
type GormPredictionRepositoryWithTracing struct {
	*GormPredictionRepository
}

func NewGormPredictionRepositoryWithTracing(db *gorm.DB) *GormPredictionRepositoryWithTracing {
	return &GormPredictionRepositoryWithTracing{
		GormPredictionRepository: NewGormPredictionRepository(db),
	}
}

// CreateBatchWithContext traces the bulk prediction insert.
func (r *GormPredictionRepositoryWithTracing) CreateBatchWithContext(ctx context.Context, predictions []domain.Prediction) error {
	_, span := tracer.Start(ctx, "repository.CreatePredictions",
		trace.WithAttributes(
			attribute.Int("predictions.count", len(predictions)),
		),
	)
	defer span.End()

	err := r.GormPredictionRepository.CreateBatch(predictions)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
