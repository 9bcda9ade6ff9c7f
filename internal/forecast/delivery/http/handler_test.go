package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/forecast/domain"
	"github.com/prognoza/forecast-platform/internal/forecast/usecase/command"
	"github.com/prognoza/forecast-platform/internal/forecast/usecase/query"
	userhttp "github.com/prognoza/forecast-platform/internal/user/delivery/http"
)

type fakeRunRepo struct {
	latest    *domain.PredictionRun
	latestErr error
}

func (r *fakeRunRepo) Create(run *domain.PredictionRun) error { return nil }
func (r *fakeRunRepo) FindByID(orgID, id uint) (*domain.PredictionRun, error) {
	return nil, gorm.ErrRecordNotFound
}
func (r *fakeRunRepo) FindLatest(orgID uint) (*domain.PredictionRun, error) {
	return r.latest, r.latestErr
}
func (r *fakeRunRepo) FindAllByOrganization(orgID uint, limit, offset int) ([]domain.PredictionRun, error) {
	return nil, nil
}
func (r *fakeRunRepo) Count(orgID uint) (int64, error) { return 0, nil }

type fakePredRepo struct {
	items []domain.HistoryItem
	total int64

	gotSearch string
	gotLimit  int
	gotOffset int
}

func (r *fakePredRepo) CreateBatch(predictions []domain.Prediction) error { return nil }
func (r *fakePredRepo) FindByRun(runID uint) ([]domain.HistoryItem, error) {
	return r.items, nil
}
func (r *fakePredRepo) FindByOrganization(orgID uint, search string, limit, offset int) ([]domain.HistoryItem, int64, error) {
	r.gotSearch = search
	r.gotLimit = limit
	r.gotOffset = offset
	return r.items, r.total, nil
}

// newTestHandler builds a ForecastHandler without touching the default
// Prometheus registry so tests can construct as many as they need.
func newTestHandler(runs domain.PredictionRunRepository, preds domain.PredictionRepository) *ForecastHandler {
	return &ForecastHandler{
		predictHandler: command.NewPredictSalesHandler(nil, nil, nil, nil, nil, nil),
		dataHandler:    query.NewGetForecastDataHandler(runs, preds),
		historyHandler: query.NewGetForecastHistoryHandler(preds),
		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "endpoint", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_duration_seconds"}, []string{"method", "endpoint"}),
		forecastRuns:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_forecast_runs_total"}, []string{"outcome"}),
	}
}

func withOrg(r *http.Request, orgID, userID uint) *http.Request {
	ctx := context.WithValue(r.Context(), userhttp.OrgIDKey, orgID)
	ctx = context.WithValue(ctx, userhttp.UserIDKey, userID)
	return r.WithContext(ctx)
}

func TestPredictSalesRejectsMissingOrganization(t *testing.T) {
	h := newTestHandler(&fakeRunRepo{}, &fakePredRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/forecast/predict", nil)
	rec := httptest.NewRecorder()
	h.PredictSales(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, userhttp.ErrNoOrganization, body["error"])
}

func TestPredictSalesMapsPredictError(t *testing.T) {
	// An explicit zero is out of range, not "use the default".
	for _, payload := range []string{`{"DaysCount":400}`, `{"DaysCount":0}`} {
		h := newTestHandler(&fakeRunRepo{}, &fakePredRepo{})

		req := httptest.NewRequest(http.MethodPost, "/api/forecast/predict", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		h.PredictSales(rec, withOrg(req, 7, 3))

		require.Equal(t, http.StatusBadRequest, rec.Code, payload)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Invalid input", body["error"], payload)
		assert.Contains(t, body["details"], "between 1 and 365", payload)
	}
}

func TestGetForecastDataEndpoint(t *testing.T) {
	mape := 3.2
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	preds := &fakePredRepo{
		items: []domain.HistoryItem{
			{
				Prediction: domain.Prediction{
					ProductID:         1,
					PeriodStart:       start,
					PeriodEnd:         start.AddDate(0, 0, 7),
					PredictedQuantity: 42,
					ItemMAPE:          &mape,
				},
				ProductName:     "Молоко",
				ProductCategory: "Молочные продукты",
			},
		},
	}
	h := newTestHandler(&fakeRunRepo{latest: &domain.PredictionRun{ID: 9}}, preds)

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/data", nil)
	rec := httptest.NewRecorder()
	h.GetForecastData(rec, withOrg(req, 7, 3))

	require.Equal(t, http.StatusOK, rec.Code)

	var data query.ForecastData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	require.Len(t, data.Trend.Points, 1)
	assert.Equal(t, "2025-03-10", data.Trend.Points[0].Date)
	assert.Equal(t, 42.0, data.Trend.Points[0].Value)
	require.Len(t, data.TopProducts, 1)
	assert.Equal(t, "Молоко", data.TopProducts[0].Name)
	assert.Equal(t, "bg-green-500", data.TopProducts[0].ColorClass)
	require.Len(t, data.History.Items, 1)
	assert.Equal(t, query.AccuracyHigh, data.History.Items[0].Accuracy)
}

func TestForecastRoutesCarryQueryParams(t *testing.T) {
	preds := &fakePredRepo{total: 17}
	h := newTestHandler(&fakeRunRepo{latestErr: gorm.ErrRecordNotFound}, preds)

	authn := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, withOrg(r, 7, 3))
		}
	}
	router := mux.NewRouter()
	h.RegisterRoutes(router, authn)

	req := httptest.NewRequest(http.MethodGet, "/api/forecast/history?page=2&limit=5&search=Молоко", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Молоко", preds.gotSearch)
	assert.Equal(t, 5, preds.gotLimit)
	assert.Equal(t, 5, preds.gotOffset)

	var history query.ForecastHistory
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	assert.Equal(t, int64(17), history.Total)
	assert.Empty(t, history.Items)

	// Routes are method-scoped.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/forecast/predict", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
