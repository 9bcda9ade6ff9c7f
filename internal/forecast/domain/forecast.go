package domain

import (
	"time"

	"gorm.io/gorm"
)

// PredictionRun is one completed forecast for an organization.
type PredictionRun struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"not null;index"`
	DaysPredicted  int            `json:"days_predicted" gorm:"not null"`
	OverallMAPE    float64        `json:"overall_mape"`
	OverallMAE     float64        `json:"overall_mae"`
	RunTimestamp   time.Time      `json:"run_timestamp" gorm:"not null;index"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (PredictionRun) TableName() string {
	return "prediction_runs"
}

// Prediction is a single per-product forecast line belonging to a run.
type Prediction struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	PredictionRunID   uint           `json:"prediction_run_id" gorm:"not null;index"`
	ProductID         uint           `json:"product_id" gorm:"not null;index"`
	PeriodStart       time.Time      `json:"period_start"`
	PeriodEnd         time.Time      `json:"period_end"`
	PredictedQuantity float64        `json:"predicted_quantity"`
	ItemMAPE          *float64       `json:"item_mape"`
	ItemMAE           *float64       `json:"item_mae"`
	CreatedAt         time.Time      `json:"created_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Prediction) TableName() string {
	return "predictions"
}

// PredictionRunRepository defines data access for forecast runs
type PredictionRunRepository interface {
	Create(run *PredictionRun) error
	FindByID(orgID, id uint) (*PredictionRun, error)
	FindLatest(orgID uint) (*PredictionRun, error)
	FindAllByOrganization(orgID uint, limit, offset int) ([]PredictionRun, error)
	Count(orgID uint) (int64, error)
}

// HistoryItem is a prediction line joined with its product name, used
// by the dashboard and history endpoints.
type HistoryItem struct {
	Prediction
	ProductName     string `json:"product_name"`
	ProductCategory string `json:"product_category"`
}

// PredictionRepository defines data access for prediction lines
type PredictionRepository interface {
	CreateBatch(predictions []Prediction) error
	FindByRun(runID uint) ([]HistoryItem, error)
	// FindByOrganization returns prediction lines newest-first with an
	// optional product-name search, plus the total matching count.
	FindByOrganization(orgID uint, search string, limit, offset int) ([]HistoryItem, int64, error)
}
