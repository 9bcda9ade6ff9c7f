package kafka

import "time"

// ForecastCompletedEvent is emitted after a prediction run is persisted.
type ForecastCompletedEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	PredictionRunID uint      `json:"prediction_run_id"`
	OrganizationID  uint      `json:"organization_id"`
	UserID          uint      `json:"user_id"`
	DaysPredicted   int       `json:"days_predicted"`
	OverallMAPE     float64   `json:"overall_mape"`
	OverallMAE      float64   `json:"overall_mae"`
	PredictionCount int       `json:"prediction_count"`
	Timestamp       time.Time `json:"timestamp"`
}

// OperationRecordedEvent is emitted for every inventory movement.
type OperationRecordedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	OperationID    uint      `json:"operation_id"`
	OrganizationID uint      `json:"organization_id"`
	ProductID      uint      `json:"product_id"`
	OperationType  string    `json:"operation_type"`
	Quantity       float64   `json:"quantity"`
	Timestamp      time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeForecastCompleted = "forecast.completed"
	EventTypeOperationRecorded = "operation.recorded"
)

// Kafka topics
const (
	TopicForecastCompleted = "forecast-completed"
	TopicOperationRecorded = "operation-recorded"
)
