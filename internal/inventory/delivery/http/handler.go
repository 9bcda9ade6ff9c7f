package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prognoza/forecast-platform/internal/inventory/domain"
	"github.com/prognoza/forecast-platform/internal/inventory/usecase/command"
	"github.com/prognoza/forecast-platform/internal/inventory/usecase/query"
	userhttp "github.com/prognoza/forecast-platform/internal/user/delivery/http"
	"github.com/prognoza/forecast-platform/kafka"
)

// Middleware is the shape of the auth wrappers provided by the user module.
type Middleware func(http.HandlerFunc) http.HandlerFunc

// InventoryHandler handles HTTP requests for products and operations
type InventoryHandler struct {
	// Command handlers
	createHandler    *command.CreateProductHandler
	updateHandler    *command.UpdateProductHandler
	deleteHandler    *command.DeleteProductHandler
	quantityHandler  *command.UpdateQuantityHandler
	operationHandler *command.RecordOperationHandler

	// Query handlers
	getHandler     *query.GetProductHandler
	listHandler    *query.ListProductsHandler
	listOpsHandler *query.ListOperationsHandler

	publisher      kafka.EventPublisher
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewInventoryHandler creates a new inventory handler. The publisher
// may be nil when Kafka is disabled.
func NewInventoryHandler(products domain.ProductRepository, operations domain.OperationRepository, publisher kafka.EventPublisher) *InventoryHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_requests_total",
			Help: "Total number of requests to inventory service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_request_duration_seconds",
			Help:    "Duration of inventory service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &InventoryHandler{
		createHandler:    command.NewCreateProductHandler(products),
		updateHandler:    command.NewUpdateProductHandler(products),
		deleteHandler:    command.NewDeleteProductHandler(products),
		quantityHandler:  command.NewUpdateQuantityHandler(products, operations),
		operationHandler: command.NewRecordOperationHandler(products, operations),
		getHandler:       query.NewGetProductHandler(products),
		listHandler:      query.NewListProductsHandler(products),
		listOpsHandler:   query.NewListOperationsHandler(operations),
		publisher:        publisher,
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
func (h *InventoryHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

func (h *InventoryHandler) orgFromRequest(w http.ResponseWriter, r *http.Request) (uint, bool) {
	orgID, ok := userhttp.OrgIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusBadRequest, userhttp.ErrNoOrganization)
		return 0, false
	}
	return orgID, true
}

// CreateProduct handles POST /api/inventory/products
func (h *InventoryHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Name     string  `json:"name"`
		Code     string  `json:"code"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateProductCommand{
		OrganizationID: orgID,
		Name:           req.Name,
		Code:           req.Code,
		Category:       req.Category,
		Price:          req.Price,
		Quantity:       req.Quantity,
	}

	product, err := h.createHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, product)
}

// GetProduct handles GET /api/inventory/products/{id}
func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.getHandler.Handle(query.GetProductQuery{OrganizationID: orgID, ID: uint(id)})
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/inventory/products
func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	products, err := h.listHandler.Handle(query.ListProductsQuery{
		OrganizationID: orgID,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, products)
}

// UpdateProduct handles PUT /api/inventory/products/{id}
func (h *InventoryHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Name     string  `json:"name"`
		Code     string  `json:"code"`
		Category string  `json:"category"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateProductCommand{
		OrganizationID: orgID,
		ID:             uint(id),
		Name:           req.Name,
		Code:           req.Code,
		Category:       req.Category,
		Price:          req.Price,
		Quantity:       req.Quantity,
	}

	product, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/inventory/products/{id}
func (h *InventoryHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.deleteHandler.Handle(command.DeleteProductCommand{OrganizationID: orgID, ID: uint(id)}); err != nil {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// UpdateQuantity handles PATCH /api/inventory/products/{id}/quantity
func (h *InventoryHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req struct {
		Quantity int    `json:"quantity"`
		Kind     string `json:"operation_type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateQuantityCommand{
		OrganizationID: orgID,
		ProductID:      uint(id),
		Quantity:       req.Quantity,
		Kind:           req.Kind,
	}

	product, err := h.quantityHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// RecordOperation handles POST /api/inventory/operations
func (h *InventoryHandler) RecordOperation(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID   uint       `json:"product_id"`
		LocationID  uint       `json:"location_id"`
		Kind        string     `json:"operation_type"`
		Quantity    float64    `json:"quantity"`
		Date        *time.Time `json:"operation_date"`
		CostPrice   *float64   `json:"cost_price"`
		TotalAmount *float64   `json:"total_amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.RecordOperationCommand{
		OrganizationID: orgID,
		ProductID:      req.ProductID,
		LocationID:     req.LocationID,
		Kind:           req.Kind,
		Quantity:       req.Quantity,
		Date:           req.Date,
		CostPrice:      req.CostPrice,
		TotalAmount:    req.TotalAmount,
	}

	operation, err := h.operationHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.publisher != nil {
		event := kafka.OperationRecordedEvent{
			OperationID:    operation.ID,
			OrganizationID: operation.OrganizationID,
			ProductID:      operation.ProductID,
			OperationType:  operation.Kind,
			Quantity:       operation.Quantity,
		}
		if err := h.publisher.PublishOperationRecorded(r.Context(), event); err != nil {
			// The operation is already persisted, the event is best effort.
			h.respondJSON(w, http.StatusCreated, operation)
			return
		}
	}

	h.respondJSON(w, http.StatusCreated, operation)
}

// ListOperations handles GET /api/inventory/operations
func (h *InventoryHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	orgID, ok := h.orgFromRequest(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	productID, _ := strconv.ParseUint(r.URL.Query().Get("product_id"), 10, 32)

	operations, err := h.listOpsHandler.Handle(query.ListOperationsQuery{
		OrganizationID: orgID,
		ProductID:      uint(productID),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, operations)
}

// respondJSON sends a JSON response
func (h *InventoryHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *InventoryHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router, authn Middleware) {
	router.HandleFunc("/api/inventory/products", h.metricsMiddleware("/api/inventory/products", authn(h.CreateProduct))).Methods("POST")
	router.HandleFunc("/api/inventory/products", h.metricsMiddleware("/api/inventory/products", authn(h.ListProducts))).Methods("GET")
	router.HandleFunc("/api/inventory/products/{id}", h.metricsMiddleware("/api/inventory/products/{id}", authn(h.GetProduct))).Methods("GET")
	router.HandleFunc("/api/inventory/products/{id}", h.metricsMiddleware("/api/inventory/products/{id}", authn(h.UpdateProduct))).Methods("PUT")
	router.HandleFunc("/api/inventory/products/{id}", h.metricsMiddleware("/api/inventory/products/{id}", authn(h.DeleteProduct))).Methods("DELETE")
	router.HandleFunc("/api/inventory/products/{id}/quantity", h.metricsMiddleware("/api/inventory/products/{id}/quantity", authn(h.UpdateQuantity))).Methods("PATCH")
	router.HandleFunc("/api/inventory/operations", h.metricsMiddleware("/api/inventory/operations", authn(h.RecordOperation))).Methods("POST")
	router.HandleFunc("/api/inventory/operations", h.metricsMiddleware("/api/inventory/operations", authn(h.ListOperations))).Methods("GET")
}
