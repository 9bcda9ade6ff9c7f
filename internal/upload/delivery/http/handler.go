package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
	"github.com/prognoza/forecast-platform/internal/upload/usecase/command"
	userhttp "github.com/prognoza/forecast-platform/internal/user/delivery/http"
)

// Middleware is the shape of the auth wrappers provided by the user module.
type Middleware func(http.HandlerFunc) http.HandlerFunc

const maxUploadSize = 10 << 20 // 10MB

// UploadHandler handles operation history file uploads
type UploadHandler struct {
	importHandler *command.ImportOperationsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(products inventory.ProductRepository, operations inventory.OperationRepository) *UploadHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_service_requests_total",
			Help: "Total number of requests to upload service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upload_service_request_duration_seconds",
			Help:    "Duration of upload service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &UploadHandler{
		importHandler:  command.NewImportOperationsHandler(products, operations),
		requestCounter: requestCounter,
		requestLatency: requestLatency,
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
func (h *UploadHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// ImportOperations handles POST /api/upload/operations
func (h *UploadHandler) ImportOperations(w http.ResponseWriter, r *http.Request) {
	orgID, ok := userhttp.OrgIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusBadRequest, userhttp.ErrNoOrganization)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Файл не был загружен")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Файл не был загружен")
		return
	}
	defer file.Close()

	lower := strings.ToLower(header.Filename)
	if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".xlsx") {
		h.respondError(w, http.StatusBadRequest, "Поддерживаются только CSV и XLSX файлы")
		return
	}

	cmd := command.ImportOperationsCommand{
		OrganizationID: orgID,
		Filename:       header.Filename,
		File:           file,
	}

	result, err := h.importHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Файл успешно обработан",
		"data":    result,
	})
}

// Status handles GET /api/upload/status
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"message":          "Сервис загрузки файлов доступен",
		"supportedFormats": []string{"CSV", "XLSX"},
		"maxFileSize":      "10MB",
	})
}

// respondJSON sends a JSON response
func (h *UploadHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *UploadHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all upload routes
func (h *UploadHandler) RegisterRoutes(router *mux.Router, authn Middleware) {
	router.HandleFunc("/api/upload/operations", h.metricsMiddleware("/api/upload/operations", authn(h.ImportOperations))).Methods("POST")
	router.HandleFunc("/api/upload/status", h.metricsMiddleware("/api/upload/status", h.Status)).Methods("GET")
}
