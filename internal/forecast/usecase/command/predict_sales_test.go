package command

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prognoza/forecast-platform/internal/forecast/assembler"
	"github.com/prognoza/forecast-platform/internal/forecast/domain"
	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
	"github.com/prognoza/forecast-platform/kafka"
	"github.com/prognoza/forecast-platform/pkg/integration"
)

type fakePredictor struct {
	responses []fakeCall
	payloads  [][]map[string]interface{}
}

type fakeCall struct {
	response []map[string]interface{}
	err      error
}

func (p *fakePredictor) Predict(ctx context.Context, payload []map[string]interface{}) ([]map[string]interface{}, error) {
	p.payloads = append(p.payloads, payload)
	if len(p.responses) == 0 {
		return nil, nil
	}
	call := p.responses[0]
	p.responses = p.responses[1:]
	return call.response, call.err
}

type fakeProductRepo struct {
	products []inventory.Product
}

func (r *fakeProductRepo) Create(product *inventory.Product) error { return nil }
func (r *fakeProductRepo) FindByID(orgID, id uint) (*inventory.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) FindByCode(orgID uint, code string) (*inventory.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) FindAll(orgID uint, limit, offset int) ([]inventory.Product, error) {
	if offset >= len(r.products) {
		return nil, nil
	}
	return r.products, nil
}
func (r *fakeProductRepo) Update(product *inventory.Product) error { return nil }
func (r *fakeProductRepo) UpdateQuantity(orgID, id uint, quantity int) (*inventory.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Delete(orgID, id uint) error { return nil }
func (r *fakeProductRepo) Count(orgID uint) (int64, error) { return 0, nil }

type fakeOperationRepo struct {
	operations []inventory.Operation
}

func (r *fakeOperationRepo) Create(op *inventory.Operation) error { return nil }
func (r *fakeOperationRepo) CreateBatch(ops []inventory.Operation) error { return nil }
func (r *fakeOperationRepo) FindAllByOrganization(orgID uint) ([]inventory.Operation, error) {
	return r.operations, nil
}
func (r *fakeOperationRepo) FindByProduct(orgID, productID uint, limit, offset int) ([]inventory.Operation, error) {
	return nil, nil
}
func (r *fakeOperationRepo) Count(orgID uint) (int64, error) { return 0, nil }

type fakeRunRepo struct {
	created []*domain.PredictionRun
	err     error
}

func (r *fakeRunRepo) Create(run *domain.PredictionRun) error {
	if r.err != nil {
		return r.err
	}
	run.ID = uint(len(r.created) + 1)
	r.created = append(r.created, run)
	return nil
}
func (r *fakeRunRepo) FindByID(orgID, id uint) (*domain.PredictionRun, error) { return nil, nil }
func (r *fakeRunRepo) FindLatest(orgID uint) (*domain.PredictionRun, error) { return nil, nil }
func (r *fakeRunRepo) FindAllByOrganization(orgID uint, limit, offset int) ([]domain.PredictionRun, error) {
	return nil, nil
}
func (r *fakeRunRepo) Count(orgID uint) (int64, error) { return 0, nil }

type fakePredictionRepo struct {
	batches [][]domain.Prediction
}

func (r *fakePredictionRepo) CreateBatch(rows []domain.Prediction) error {
	r.batches = append(r.batches, rows)
	return nil
}
func (r *fakePredictionRepo) FindByRun(runID uint) ([]domain.HistoryItem, error) { return nil, nil }
func (r *fakePredictionRepo) FindByOrganization(orgID uint, search string, limit, offset int) ([]domain.HistoryItem, int64, error) {
	return nil, 0, nil
}

type fakeEventPublisher struct {
	forecasts []kafka.ForecastCompletedEvent
}

func (p *fakeEventPublisher) PublishForecastCompleted(ctx context.Context, event kafka.ForecastCompletedEvent) error {
	p.forecasts = append(p.forecasts, event)
	return nil
}
func (p *fakeEventPublisher) PublishOperationRecorded(ctx context.Context, event kafka.OperationRecordedEvent) error {
	return nil
}

func newTestHandler(predictor *fakePredictor, runs *fakeRunRepo, preds *fakePredictionRepo, publisher kafka.EventPublisher) *PredictSalesHandler {
	products := &fakeProductRepo{products: []inventory.Product{
		{ID: 1, Name: "Молоко 3.2%", Code: "MLK-1"},
	}}
	operations := &fakeOperationRepo{operations: []inventory.Operation{
		{ID: 1, ProductID: 1, Kind: inventory.OperationSale, Quantity: 3},
	}}

	h := NewPredictSalesHandler(
		assembler.NewAssembler(products, operations),
		predictor,
		products,
		runs,
		preds,
		publisher,
	)
	h.policy.InitialDelay = time.Millisecond
	h.policy.MaxDelay = 5 * time.Millisecond
	return h
}

func days(n int) *int { return &n }

func mlResponse() []map[string]interface{} {
	return []map[string]interface{}{
		{"MAPE": 4.5, "MAE": 1.2, "DaysPredict": float64(7)},
		{assembler.FieldName: "Молоко 3.2%", assembler.FieldQuantity: 10.0},
	}
}

func TestPredictSalesSuccessPersistsAndPublishes(t *testing.T) {
	predictor := &fakePredictor{responses: []fakeCall{{response: mlResponse()}}}
	runs := &fakeRunRepo{}
	preds := &fakePredictionRepo{}
	publisher := &fakeEventPublisher{}

	h := newTestHandler(predictor, runs, preds, publisher)

	result, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, UserID: 5})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("expected raw ML response passthrough, got %d elements", len(result))
	}

	// An absent DaysCount falls back to the default horizon.
	if got := predictor.payloads[0][0]["DaysCount"]; got != 7 {
		t.Errorf("expected default DaysCount 7 in payload, got %v", got)
	}

	if len(runs.created) != 1 {
		t.Fatalf("expected one persisted run, got %d", len(runs.created))
	}
	if runs.created[0].OverallMAPE != 4.5 {
		t.Errorf("expected run MAPE 4.5, got %v", runs.created[0].OverallMAPE)
	}

	if len(preds.batches) != 1 || len(preds.batches[0]) != 1 {
		t.Fatalf("expected one prediction row batch, got %+v", preds.batches)
	}
	if preds.batches[0][0].PredictionRunID != runs.created[0].ID {
		t.Error("prediction rows must reference the persisted run")
	}

	if len(publisher.forecasts) != 1 {
		t.Fatalf("expected one completion event, got %d", len(publisher.forecasts))
	}
	if publisher.forecasts[0].UserID != 5 || publisher.forecasts[0].PredictionCount != 1 {
		t.Errorf("unexpected completion event: %+v", publisher.forecasts[0])
	}
}

func TestPredictSalesRejectsOutOfRangeHorizon(t *testing.T) {
	h := newTestHandler(&fakePredictor{}, &fakeRunRepo{}, &fakePredictionRepo{}, nil)

	_, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(366)})

	predictErr, ok := err.(*PredictError)
	if !ok {
		t.Fatalf("expected PredictError, got %v", err)
	}
	if predictErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", predictErr.Status)
	}
}

func TestPredictSalesRejectsExplicitZeroHorizon(t *testing.T) {
	predictor := &fakePredictor{}
	h := newTestHandler(predictor, &fakeRunRepo{}, &fakePredictionRepo{}, nil)

	_, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(0)})

	predictErr, ok := err.(*PredictError)
	if !ok {
		t.Fatalf("expected PredictError, got %v", err)
	}
	if predictErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400 for explicit zero, got %d", predictErr.Status)
	}
	if details, _ := predictErr.Details.(string); !strings.Contains(details, "between 1 and 365") {
		t.Errorf("expected details to name the valid range, got %v", predictErr.Details)
	}
	if len(predictor.payloads) != 0 {
		t.Errorf("ML service must not be called for a rejected horizon, got %d calls", len(predictor.payloads))
	}
}

func TestPredictSalesRejectsEmptyHistory(t *testing.T) {
	predictor := &fakePredictor{}
	products := &fakeProductRepo{}
	operations := &fakeOperationRepo{}

	h := NewPredictSalesHandler(
		assembler.NewAssembler(products, operations),
		predictor,
		products,
		&fakeRunRepo{},
		&fakePredictionRepo{},
		nil,
	)

	_, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(7)})

	predictErr, ok := err.(*PredictError)
	if !ok {
		t.Fatalf("expected PredictError, got %v", err)
	}
	if predictErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400 for empty operation history, got %d", predictErr.Status)
	}
	if predictErr.Message != "Нет данных об операциях для построения прогноза" {
		t.Errorf("unexpected message %q", predictErr.Message)
	}
	if len(predictor.payloads) != 0 {
		t.Errorf("ML service must not see a header-only payload, got %d calls", len(predictor.payloads))
	}
}

func TestPredictSalesInvalidPayloadReturns400(t *testing.T) {
	fieldErrors := []integration.FieldError{{
		Path:    []interface{}{1, "Количество"},
		Code:    "invalid_type",
		Message: "must be a number",
	}}
	predictor := &fakePredictor{responses: []fakeCall{{
		err: &integration.Error{
			Kind:             integration.KindInvalidPayload,
			Message:          "payload rejected",
			ValidationErrors: fieldErrors,
		},
	}}}

	h := newTestHandler(predictor, &fakeRunRepo{}, &fakePredictionRepo{}, nil)

	_, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(7)})

	predictErr, ok := err.(*PredictError)
	if !ok {
		t.Fatalf("expected PredictError, got %v", err)
	}
	if predictErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", predictErr.Status)
	}
	if predictErr.Message != "ML service payload error" {
		t.Errorf("unexpected message %q", predictErr.Message)
	}
	if len(predictor.payloads) != 1 {
		t.Errorf("non-retryable payload errors must not be retried, got %d calls", len(predictor.payloads))
	}
}

func TestPredictSalesCorrectionRetriesOnce(t *testing.T) {
	correctionApplied := false
	unseenErr := &integration.Error{
		Kind:    integration.KindUnseenLabel,
		Message: "unseen category",
		Correction: &integration.Correction{
			Description: "replace unseen category",
			Apply: func(err *integration.Error, payload []map[string]interface{}) []map[string]interface{} {
				correctionApplied = true
				return payload
			},
		},
	}

	predictor := &fakePredictor{responses: []fakeCall{
		{err: unseenErr},
		{response: mlResponse()},
	}}
	runs := &fakeRunRepo{}

	h := newTestHandler(predictor, runs, &fakePredictionRepo{}, nil)

	result, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(7)})
	if err != nil {
		t.Fatalf("expected corrected retry to succeed, got %v", err)
	}
	if !correctionApplied {
		t.Error("expected the correction to be applied")
	}
	if len(result) != 2 {
		t.Errorf("expected ML response after correction, got %d elements", len(result))
	}
	if len(runs.created) != 1 {
		t.Errorf("corrected run must still be persisted, got %d", len(runs.created))
	}
}

func TestPredictSalesCorrectionFailureReturns502(t *testing.T) {
	unseenErr := &integration.Error{
		Kind:    integration.KindUnseenLabel,
		Message: "unseen category",
		Correction: &integration.Correction{
			Description: "replace unseen category",
			Apply: func(err *integration.Error, payload []map[string]interface{}) []map[string]interface{} {
				return payload
			},
		},
	}

	predictor := &fakePredictor{responses: []fakeCall{
		{err: unseenErr},
		{err: unseenErr},
	}}

	h := newTestHandler(predictor, &fakeRunRepo{}, &fakePredictionRepo{}, nil)

	_, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(7)})

	predictErr, ok := err.(*PredictError)
	if !ok {
		t.Fatalf("expected PredictError, got %v", err)
	}
	if predictErr.Status != http.StatusBadGateway {
		t.Errorf("expected 502 after failed correction, got %d", predictErr.Status)
	}
	if predictErr.Message != "ML service unavailable after correction" {
		t.Errorf("unexpected message %q", predictErr.Message)
	}
}

func TestPredictSalesTransientExhaustionReturns502(t *testing.T) {
	down := &integration.Error{
		Kind:      integration.KindNetworkError,
		Message:   "connection refused",
		Retryable: true,
	}
	predictor := &fakePredictor{responses: []fakeCall{
		{err: down}, {err: down}, {err: down}, {err: down},
	}}

	h := newTestHandler(predictor, &fakeRunRepo{}, &fakePredictionRepo{}, nil)

	_, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(7)})

	predictErr, ok := err.(*PredictError)
	if !ok {
		t.Fatalf("expected PredictError, got %v", err)
	}
	if predictErr.Status != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", predictErr.Status)
	}
	if got := len(predictor.payloads); got != 4 {
		t.Errorf("expected initial call plus 3 retries, got %d", got)
	}
}

func TestPredictSalesPersistenceFailureStillReturnsResult(t *testing.T) {
	predictor := &fakePredictor{responses: []fakeCall{{response: mlResponse()}}}
	runs := &fakeRunRepo{err: context.DeadlineExceeded}

	h := newTestHandler(predictor, runs, &fakePredictionRepo{}, nil)

	result, err := h.Handle(context.Background(), PredictSalesCommand{OrganizationID: 1, DaysCount: days(7)})
	if err != nil {
		t.Fatalf("persistence failures must not surface, got %v", err)
	}
	if len(result) != 2 {
		t.Errorf("expected ML response despite persistence failure, got %d elements", len(result))
	}
}
