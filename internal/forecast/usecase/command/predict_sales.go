package command

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prognoza/forecast-platform/internal/forecast/assembler"
	"github.com/prognoza/forecast-platform/internal/forecast/domain"
	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
	"github.com/prognoza/forecast-platform/kafka"
	"github.com/prognoza/forecast-platform/pkg/integration"
	"github.com/prognoza/forecast-platform/pkg/logger"
)

const (
	defaultDaysCount = 7
	maxDaysCount     = 365
	productPageSize  = 500
)

// Predictor is the ML call the command depends on.
type Predictor interface {
	Predict(ctx context.Context, payload []map[string]interface{}) ([]map[string]interface{}, error)
}

// PredictSalesCommand represents a forecast request for an organization
type PredictSalesCommand struct {
	OrganizationID uint
	UserID         uint
	// DaysCount nil means the field was absent and the default horizon
	// applies; an explicit out-of-range value is rejected.
	DaysCount *int
}

// PredictError carries the HTTP status the delivery layer should
// return along with a message and optional structured details.
type PredictError struct {
	Status  int
	Message string
	Details interface{}
}

func (e *PredictError) Error() string {
	return e.Message
}

// PredictSalesHandler orchestrates the forecast flow: assemble history,
// call the ML service with retries, apply a correction once if offered,
// persist the run and publish the completion event.
type PredictSalesHandler struct {
	asm       *assembler.Assembler
	predictor Predictor
	products  inventory.ProductRepository
	runs      domain.PredictionRunRepository
	preds     domain.PredictionRepository
	publisher kafka.EventPublisher
	policy    integration.RetryPolicy
}

// NewPredictSalesHandler creates a new predict sales handler. The
// publisher may be nil when Kafka is disabled.
func NewPredictSalesHandler(
	asm *assembler.Assembler,
	predictor Predictor,
	products inventory.ProductRepository,
	runs domain.PredictionRunRepository,
	preds domain.PredictionRepository,
	publisher kafka.EventPublisher,
) *PredictSalesHandler {
	policy := integration.DefaultRetryPolicy()
	policy.OnRetry = func(attempt int, err *integration.Error) {
		logger.Logger.Warn().
			Int("attempt", attempt).
			Str("kind", string(err.Kind)).
			Str("error", err.Message).
			Msg("Retrying ML service call")
	}

	return &PredictSalesHandler{
		asm:       asm,
		predictor: predictor,
		products:  products,
		runs:      runs,
		preds:     preds,
		publisher: publisher,
		policy:    policy,
	}
}

// Handle executes the forecast flow and returns the raw ML response.
func (h *PredictSalesHandler) Handle(ctx context.Context, cmd PredictSalesCommand) ([]map[string]interface{}, error) {
	daysCount := defaultDaysCount
	if cmd.DaysCount != nil {
		daysCount = *cmd.DaysCount
	}
	if daysCount < 1 || daysCount > maxDaysCount {
		return nil, &PredictError{
			Status:  http.StatusBadRequest,
			Message: "Invalid input",
			Details: fmt.Sprintf("DaysCount must be between 1 and %d", maxDaysCount),
		}
	}

	payload, err := h.asm.BuildPayload(cmd.OrganizationID, daysCount)
	if err != nil {
		return nil, &PredictError{
			Status:  http.StatusInternalServerError,
			Message: "Ошибка подготовки данных для ML-сервиса",
			Details: err.Error(),
		}
	}

	// A payload with only the DaysCount header means the organization
	// has no operation history to forecast from.
	if len(payload) <= 1 {
		return nil, &PredictError{
			Status:  http.StatusBadRequest,
			Message: "Нет данных об операциях для построения прогноза",
			Details: "Загрузите историю продаж перед запуском прогноза",
		}
	}

	logger.Logger.Info().
		Uint("organization_id", cmd.OrganizationID).
		Int("days_count", daysCount).
		Int("event_count", len(payload)-1).
		Msg("Sending payload to ML service")

	predictions, err := h.callWithRetry(ctx, payload)
	if err != nil {
		classified, _ := integration.AsError(err)
		if classified == nil {
			return nil, &PredictError{
				Status:  http.StatusInternalServerError,
				Message: "Ошибка прогнозирования",
				Details: err.Error(),
			}
		}

		if classified.Kind == integration.KindInvalidPayload {
			return nil, &PredictError{
				Status:  http.StatusBadRequest,
				Message: "ML service payload error",
				Details: classified.ValidationErrors,
			}
		}

		// A correction is retried once; a second failure is surfaced.
		if classified.Correction != nil && classified.Correction.Apply != nil {
			logger.Logger.Info().
				Str("kind", string(classified.Kind)).
				Str("correction", classified.Correction.Description).
				Msg("Attempting payload auto-correction")

			corrected := classified.Correction.Apply(classified, payload)
			predictions, err = h.callWithRetry(ctx, corrected)
			if err != nil {
				retryClassified, _ := integration.AsError(err)
				details := err.Error()
				if retryClassified != nil {
					details = retryClassified.Message
				}
				return nil, &PredictError{
					Status:  http.StatusBadGateway,
					Message: "ML service unavailable after correction",
					Details: details,
				}
			}
		} else {
			return nil, &PredictError{
				Status:  http.StatusBadGateway,
				Message: "ML service unavailable",
				Details: classified.Message,
			}
		}
	}

	metrics, rows := h.reshape(ctx, cmd.OrganizationID, predictions, daysCount)
	h.persistAndPublish(ctx, cmd, metrics, rows)

	return predictions, nil
}

func (h *PredictSalesHandler) callWithRetry(ctx context.Context, payload []map[string]interface{}) ([]map[string]interface{}, error) {
	return integration.Retry(ctx, func() ([]map[string]interface{}, error) {
		return h.predictor.Predict(ctx, payload)
	}, h.policy)
}

func (h *PredictSalesHandler) reshape(ctx context.Context, orgID uint, predictions []map[string]interface{}, daysCount int) (assembler.Metrics, []domain.Prediction) {
	products, err := h.loadProducts(orgID)
	if err != nil {
		logger.Logger.Error().
			Err(err).
			Uint("organization_id", orgID).
			Msg("Failed to fetch products for prediction mapping")
	}

	metrics, rows := assembler.ParseResponse(predictions, products, daysCount, time.Now())

	logger.Logger.Info().
		Float64("mape", metrics.MAPE).
		Float64("mae", metrics.MAE).
		Int("mapped_count", len(rows)).
		Int("total_from_ml", max(len(predictions)-1, 0)).
		Msg("Mapped ML predictions to products")

	return metrics, rows
}

// persistAndPublish saves the run and its lines and emits the
// completion event. Failures here are logged, not surfaced: the
// forecast itself already succeeded.
func (h *PredictSalesHandler) persistAndPublish(ctx context.Context, cmd PredictSalesCommand, metrics assembler.Metrics, rows []domain.Prediction) {
	run := &domain.PredictionRun{
		OrganizationID: cmd.OrganizationID,
		DaysPredicted:  metrics.DaysPredict,
		OverallMAPE:    metrics.MAPE,
		OverallMAE:     metrics.MAE,
		RunTimestamp:   time.Now(),
	}

	if err := h.runs.Create(run); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to save prediction run")
		return
	}

	for i := range rows {
		rows[i].PredictionRunID = run.ID
	}
	if err := h.preds.CreateBatch(rows); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to save prediction details")
	}

	if h.publisher != nil {
		event := kafka.ForecastCompletedEvent{
			PredictionRunID: run.ID,
			OrganizationID:  cmd.OrganizationID,
			UserID:          cmd.UserID,
			DaysPredicted:   metrics.DaysPredict,
			OverallMAPE:     metrics.MAPE,
			OverallMAE:      metrics.MAE,
			PredictionCount: len(rows),
		}
		if err := h.publisher.PublishForecastCompleted(ctx, event); err != nil {
			logger.Logger.Error().Err(err).Msg("Failed to publish forecast completed event")
		}
	}
}

func (h *PredictSalesHandler) loadProducts(orgID uint) ([]inventory.Product, error) {
	var all []inventory.Product
	for offset := 0; ; offset += productPageSize {
		page, err := h.products.FindAll(orgID, productPageSize, offset)
		if err != nil {
			return all, err
		}
		all = append(all, page...)
		if len(page) < productPageSize {
			return all, nil
		}
	}
}
