package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// GormOperationRepositoryWithTracing wraps GormOperationRepository with
// spans for the reads the forecast flow depends on.
type GormOperationRepositoryWithTracing struct {
	*GormOperationRepository
}

func NewGormOperationRepositoryWithTracing(db *gorm.DB) *GormOperationRepositoryWithTracing {
	return &GormOperationRepositoryWithTracing{
		GormOperationRepository: NewGormOperationRepository(db),
	}
}

// FindAllByOrganizationWithContext traces the full-history read.
func (r *GormOperationRepositoryWithTracing) FindAllByOrganizationWithContext(ctx context.Context, orgID uint) ([]domain.Operation, error) {
	_, span := tracer.Start(ctx, "repository.FindAllByOrganization",
		trace.WithAttributes(
			attribute.Int("organization.id", int(orgID)),
		),
	)
	defer span.End()

	ops, err := r.GormOperationRepository.FindAllByOrganization(orgID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("operations.count", len(ops)))
	return ops, nil
}

// CreateWithContext traces a single operation write.
func (r *GormOperationRepositoryWithTracing) CreateWithContext(ctx context.Context, op *domain.Operation) error {
	_, span := tracer.Start(ctx, "repository.CreateOperation",
		trace.WithAttributes(
			attribute.Int("organization.id", int(op.OrganizationID)),
			attribute.Int("product.id", int(op.ProductID)),
			attribute.String("operation.kind", op.Kind),
		),
	)
	defer span.End()

	err := r.GormOperationRepository.Create(op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("operation.id", int(op.ID)))
	return nil
}
