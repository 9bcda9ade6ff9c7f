package repository

import (
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
)

// GormPredictionRunRepository implements domain.PredictionRunRepository using GORM
type GormPredictionRunRepository struct {
	db *gorm.DB
}

// NewGormPredictionRunRepository creates a new GORM prediction run repository
func NewGormPredictionRunRepository(db *gorm.DB) *GormPredictionRunRepository {
	return &GormPredictionRunRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormPredictionRunRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.PredictionRun{}, &domain.Prediction{})
}

// Create inserts a new prediction run
func (r *GormPredictionRunRepository) Create(run *domain.PredictionRun) error {
	return r.db.Create(run).Error
}

// FindByID retrieves a run scoped to an organization
func (r *GormPredictionRunRepository) FindByID(orgID, id uint) (*domain.PredictionRun, error) {
	var run domain.PredictionRun
	if err := r.db.Where("organization_id = ? AND id = ?", orgID, id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// FindLatest retrieves the most recent run for an organization
func (r *GormPredictionRunRepository) FindLatest(orgID uint) (*domain.PredictionRun, error) {
	var run domain.PredictionRun
	err := r.db.Where("organization_id = ?", orgID).
		Order("run_timestamp DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindAllByOrganization retrieves runs newest-first with pagination
func (r *GormPredictionRunRepository) FindAllByOrganization(orgID uint, limit, offset int) ([]domain.PredictionRun, error) {
	var runs []domain.PredictionRun
	err := r.db.Where("organization_id = ?", orgID).
		Order("run_timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Count returns the number of runs for an organization
func (r *GormPredictionRunRepository) Count(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.PredictionRun{}).
		Where("organization_id = ?", orgID).
		Count(&count).Error
	return count, err
}

// GormPredictionRepository implements domain.PredictionRepository using GORM
type GormPredictionRepository struct {
	db *gorm.DB
}

// NewGormPredictionRepository creates a new GORM prediction repository
func NewGormPredictionRepository(db *gorm.DB) *GormPredictionRepository {
	return &GormPredictionRepository{db: db}
}

// CreateBatch inserts prediction lines in batches
func (r *GormPredictionRepository) CreateBatch(predictions []domain.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}
	return r.db.CreateInBatches(predictions, 500).Error
}

// FindByRun retrieves all prediction lines of a run with product names
func (r *GormPredictionRepository) FindByRun(runID uint) ([]domain.HistoryItem, error) {
	var items []domain.HistoryItem
	err := r.db.Model(&domain.Prediction{}).
		Select("predictions.*, products.name AS product_name, products.category AS product_category").
		Joins("LEFT JOIN products ON products.id = predictions.product_id").
		Where("predictions.prediction_run_id = ?", runID).
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByOrganization retrieves prediction lines for an organization
// newest-first, optionally filtered by product name.
func (r *GormPredictionRepository) FindByOrganization(orgID uint, search string, limit, offset int) ([]domain.HistoryItem, int64, error) {
	base := r.db.Model(&domain.Prediction{}).
		Joins("JOIN prediction_runs ON prediction_runs.id = predictions.prediction_run_id").
		Joins("LEFT JOIN products ON products.id = predictions.product_id").
		Where("prediction_runs.organization_id = ?", orgID)

	if search != "" {
		base = base.Where("products.name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.HistoryItem
	err := base.
		Select("predictions.*, products.name AS product_name, products.category AS product_category").
		Order("predictions.period_start DESC").
		Limit(limit).
		Offset(offset).
		Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
