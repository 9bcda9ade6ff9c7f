package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prognoza/forecast-platform/internal/forecast/usecase/command"
	"github.com/prognoza/forecast-platform/internal/forecast/usecase/query"
	userhttp "github.com/prognoza/forecast-platform/internal/user/delivery/http"
)

// Middleware is the shape of the auth wrappers provided by the user module.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// ForecastHandler handles HTTP requests for forecasts
type ForecastHandler struct {
	predictHandler *command.PredictSalesHandler
	dataHandler    *query.GetForecastDataHandler
	historyHandler *query.GetForecastHistoryHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	forecastRuns   *prometheus.CounterVec
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(
	predictHandler *command.PredictSalesHandler,
	dataHandler *query.GetForecastDataHandler,
	historyHandler *query.GetForecastHistoryHandler,
) *ForecastHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_service_requests_total",
			Help: "Total number of requests to forecast service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecast_service_request_duration_seconds",
			Help:    "Duration of forecast service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	forecastRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_runs_total",
			Help: "Total number of forecast runs by outcome",
		},
		[]string{"outcome"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(forecastRuns)

	return &ForecastHandler{
		predictHandler: predictHandler,
		dataHandler:    dataHandler,
		historyHandler: historyHandler,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		forecastRuns:   forecastRuns,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *ForecastHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

func (h *ForecastHandler) orgFromRequest(w http.ResponseWriter, r *http.Request) (uint, bool) {
	orgID, ok := userhttp.OrgIDFromContext(r.Context())
	if !ok {
		h.respondJSON(w, http.StatusBadRequest, map[string]string{
			"error":   userhttp.ErrNoOrganization,
			"details": "Пользователь не привязан к организации",
		})
		return 0, false
	}
	return orgID, true
}

// PredictSales handles POST /api/forecast/predict
func (h *ForecastHandler) PredictSales(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}
	userID, _ := userhttp.UserIDFromContext(r.Context())

	// A pointer keeps an absent field distinct from an explicit zero:
	// only the former falls back to the default horizon.
	var req struct {
		DaysCount *int `json:"DaysCount"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	cmd := command.PredictSalesCommand{
		OrganizationID: orgID,
		UserID:         userID,
		DaysCount:      req.DaysCount,
	}

	predictions, err := h.predictHandler.Handle(r.Context(), cmd)
	if err != nil {
		h.forecastRuns.WithLabelValues("error").Inc()

		var predictErr *command.PredictError
		if errors.As(err, &predictErr) {
			h.respondJSON(w, predictErr.Status, map[string]interface{}{
				"error":   predictErr.Message,
				"details": predictErr.Details,
			})
			return
		}

		h.respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Ошибка прогнозирования",
			"details": err.Error(),
		})
		return
	}

	h.forecastRuns.WithLabelValues("success").Inc()
	h.respondJSON(w, http.StatusOK, predictions)
}

// GetForecastData handles GET /api/forecast/data
func (h *ForecastHandler) GetForecastData(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	data, err := h.dataHandler.Handle(query.GetForecastDataQuery{OrganizationID: orgID})
	if err != nil {
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Ошибка получения данных прогноза",
			"details": err.Error(),
		})
		return
	}

	h.respondJSON(w, http.StatusOK, data)
}

// GetForecastHistory handles GET /api/forecast/history
func (h *ForecastHandler) GetForecastHistory(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	search := r.URL.Query().Get("search")

	history, err := h.historyHandler.Handle(query.GetForecastHistoryQuery{
		OrganizationID: orgID,
		Page:           page,
		Limit:          limit,
		Search:         search,
	})
	if err != nil {
		h.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Ошибка получения истории прогнозов",
			"details": err.Error(),
		})
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// respondJSON sends a JSON response
func (h *ForecastHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RegisterRoutes registers all forecast routes
func (h *ForecastHandler) RegisterRoutes(router *mux.Router, authn Middleware) {
	router.HandleFunc("/api/forecast/predict", h.metricsMiddleware("/api/forecast/predict", authn(h.PredictSales))).Methods("POST")
	router.HandleFunc("/api/forecast/data", h.metricsMiddleware("/api/forecast/data", authn(h.GetForecastData))).Methods("GET")
	router.HandleFunc("/api/forecast/history", h.metricsMiddleware("/api/forecast/history", authn(h.GetForecastHistory))).Methods("GET")
}
