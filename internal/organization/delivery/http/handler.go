package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prognoza/forecast-platform/internal/organization/domain"
	"github.com/prognoza/forecast-platform/internal/organization/usecase/command"
	"github.com/prognoza/forecast-platform/internal/organization/usecase/query"
)

// Middleware is the shape of the auth wrappers provided by the user module.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// OrganizationHandler handles HTTP requests for organizations
type OrganizationHandler struct {
	// Command handlers
	createHandler    *command.CreateOrganizationHandler
	updateHandler    *command.UpdateOrganizationHandler
	deleteHandler    *command.DeleteOrganizationHandler
	createLocHandler *command.CreateLocationHandler
	deleteLocHandler *command.DeleteLocationHandler

	// Query handlers
	getHandler      *query.GetOrganizationHandler
	listHandler     *query.ListOrganizationsHandler
	listLocsHandler *query.ListLocationsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(orgs domain.OrganizationRepository, locs domain.LocationRepository) *OrganizationHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "organization_service_requests_total",
			Help: "Total number of requests to organization service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "organization_service_request_duration_seconds",
			Help:    "Duration of organization service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &OrganizationHandler{
		createHandler:    command.NewCreateOrganizationHandler(orgs),
		updateHandler:    command.NewUpdateOrganizationHandler(orgs),
		deleteHandler:    command.NewDeleteOrganizationHandler(orgs),
		createLocHandler: command.NewCreateLocationHandler(orgs, locs),
		deleteLocHandler: command.NewDeleteLocationHandler(locs),
		getHandler:       query.NewGetOrganizationHandler(orgs),
		listHandler:      query.NewListOrganizationsHandler(orgs),
		listLocsHandler:  query.NewListLocationsHandler(locs),
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
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
func (h *OrganizationHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreateOrganization handles POST /api/organizations (admin only)
func (h *OrganizationHandler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		INN     string `json:"inn"`
		Address string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateOrganizationCommand{
		Name:    req.Name,
		INN:     req.INN,
		Address: req.Address,
	}

	org, err := h.createHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, org)
}

// GetOrganization handles GET /api/organizations/{id}
func (h *OrganizationHandler) GetOrganization(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	org, err := h.getHandler.Handle(query.GetOrganizationQuery{ID: uint(id)})
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Organization not found")
		return
	}

	h.respondJSON(w, http.StatusOK, org)
}

// ListOrganizations handles GET /api/organizations (admin only)
func (h *OrganizationHandler) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	orgs, err := h.listHandler.Handle(query.ListOrganizationsQuery{Limit: limit, Offset: offset})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, orgs)
}

// UpdateOrganization handles PUT /api/organizations/{id} (admin only)
func (h *OrganizationHandler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateOrganizationCommand{
		ID:      uint(id),
		Name:    req.Name,
		Address: req.Address,
	}

	org, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, org)
}

// DeleteOrganization handles DELETE /api/organizations/{id} (admin only)
func (h *OrganizationHandler) DeleteOrganization(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteOrganizationCommand{ID: uint(id)}); err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Organization deleted successfully"})
}

// CreateLocation handles POST /api/organizations/{id}/locations (admin only)
func (h *OrganizationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orgID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateLocationCommand{
		OrganizationID: uint(orgID),
		Name:           req.Name,
		Address:        req.Address,
	}

	loc, err := h.createLocHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, loc)
}

// ListLocations handles GET /api/organizations/{id}/locations
func (h *OrganizationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orgID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid organization ID")
		return
	}

	locs, err := h.listLocsHandler.Handle(query.ListLocationsQuery{OrganizationID: uint(orgID)})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, locs)
}

// DeleteLocation handles DELETE /api/organizations/{id}/locations/{location_id} (admin only)
func (h *OrganizationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orgID, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid organization ID")
		return
	}
	locID, err := strconv.ParseUint(vars["location_id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid location ID")
		return
	}

	cmd := command.DeleteLocationCommand{
		OrganizationID: uint(orgID),
		ID:             uint(locID),
	}

	if err := h.deleteLocHandler.Handle(cmd); err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Location deleted successfully"})
}

// respondJSON sends a JSON response
func (h *OrganizationHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *OrganizationHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all organization routes
func (h *OrganizationHandler) RegisterRoutes(router *mux.Router, authn, admin Middleware) {
	router.HandleFunc("/api/organizations", h.metricsMiddleware("/api/organizations", admin(h.CreateOrganization))).Methods("POST")
	router.HandleFunc("/api/organizations", h.metricsMiddleware("/api/organizations", admin(h.ListOrganizations))).Methods("GET")
	router.HandleFunc("/api/organizations/{id}", h.metricsMiddleware("/api/organizations/{id}", authn(h.GetOrganization))).Methods("GET")
	router.HandleFunc("/api/organizations/{id}", h.metricsMiddleware("/api/organizations/{id}", admin(h.UpdateOrganization))).Methods("PUT")
	router.HandleFunc("/api/organizations/{id}", h.metricsMiddleware("/api/organizations/{id}", admin(h.DeleteOrganization))).Methods("DELETE")
	router.HandleFunc("/api/organizations/{id}/locations", h.metricsMiddleware("/api/organizations/{id}/locations", admin(h.CreateLocation))).Methods("POST")
	router.HandleFunc("/api/organizations/{id}/locations", h.metricsMiddleware("/api/organizations/{id}/locations", authn(h.ListLocations))).Methods("GET")
	router.HandleFunc("/api/organizations/{id}/locations/{location_id}", h.metricsMiddleware("/api/organizations/{id}/locations/{location_id}", admin(h.DeleteLocation))).Methods("DELETE")
}
