package pos

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dinehall/internal/logger"
	"dinehall/internal/metrics"
	"dinehall/internal/models"
)

// Handler exposes the engine over HTTP.
type Handler struct {
	service *Service
	logger  *logger.Logger
	health  func(ctx context.Context) error
}

// NewHandler creates the HTTP handler. health is called by the health
// endpoint to check downstream dependencies.
func NewHandler(service *Service, log *logger.Logger, health func(ctx context.Context) error) *Handler {
	return &Handler{service: service, logger: log, health: health}
}

// Routes registers all endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /tables/{code}/session", h.withLogging(h.handleOpenSession))
	mux.HandleFunc("POST /tables/{code}/free", h.withLogging(h.handleFreeTable))
	mux.HandleFunc("POST /sessions/{id}/close", h.withLogging(h.handleCloseSession))

	mux.HandleFunc("POST /orders", h.withLogging(h.handleCreateOrder))
	mux.HandleFunc("GET /orders/{number}", h.withLogging(h.handleGetOrder))
	mux.HandleFunc("POST /orders/{number}/submit", h.withLogging(h.handleSubmit))
	mux.HandleFunc("POST /orders/{number}/items", h.withLogging(h.handleAddItem))
	mux.HandleFunc("POST /orders/{number}/items/{id}/status", h.withLogging(h.handleSetItemStatus))
	mux.HandleFunc("POST /orders/{number}/items/{id}/void", h.withLogging(h.handleVoidItem))
	mux.HandleFunc("POST /orders/{number}/discount", h.withLogging(h.handleDiscount))
	mux.HandleFunc("POST /orders/{number}/cancel", h.withLogging(h.handleCancel))
	mux.HandleFunc("POST /orders/{number}/bill", h.withLogging(h.handleCreateBill))

	mux.HandleFunc("GET /bills/{id}", h.withLogging(h.handleGetBill))
	mux.HandleFunc("POST /bills/{id}/payments", h.withLogging(h.handleRecordPayment))
	mux.HandleFunc("POST /bills/{id}/void", h.withLogging(h.handleVoidBill))

	mux.HandleFunc("GET /reports/sales", h.withLogging(h.handleSalesReport))
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}

// withLogging wraps a handler with request logging and latency metrics.
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := logger.GenerateRequestID()
		start := time.Now()

		h.logger.Debug("http_request_received",
			r.Method+" "+r.URL.Path,
			requestID, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
			})

		next(w, r)

		metrics.RequestDuration.WithLabelValues(r.Method, r.Pattern).Observe(time.Since(start).Seconds())
	}
}

func (h *Handler) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req models.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := h.service.OpenSession(r.Context(), r.PathValue("code"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) handleFreeTable(w http.ResponseWriter, r *http.Request) {
	table, err := h.service.FreeTable(r.Context(), r.PathValue("code"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, table)
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClosedBy string `json:"closed_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ClosedBy == "" {
		h.writeError(w, http.StatusBadRequest, "closed_by is required")
		return
	}

	sess, err := h.service.CloseSession(r.Context(), r.PathValue("id"), req.ClosedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.CreateOrder(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), r.PathValue("number"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubmittedBy string `json:"submitted_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubmittedBy == "" {
		h.writeError(w, http.StatusBadRequest, "submitted_by is required")
		return
	}

	order, err := h.service.Submit(r.Context(), r.PathValue("number"), req.SubmittedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.AddItem(r.Context(), r.PathValue("number"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) handleSetItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req models.SetItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.SetItemStatus(r.Context(), r.PathValue("number"), itemID, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleVoidItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req models.VoidItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.VoidItem(r.Context(), r.PathValue("number"), itemID, &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleDiscount(w http.ResponseWriter, r *http.Request) {
	var req models.DiscountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.ApplyDiscount(r.Context(), r.PathValue("number"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	var req models.CancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.service.Cancel(r.Context(), r.PathValue("number"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.service.CreateBill(r.Context(), r.PathValue("number"), req.CreatedBy)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, bill)
}

func (h *Handler) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.service.GetBill(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.service.RecordPayment(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, bill)
}

func (h *Handler) handleVoidBill(w http.ResponseWriter, r *http.Request) {
	var req models.VoidItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bill, err := h.service.VoidBill(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, bill)
}

func (h *Handler) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.SalesReport(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.health != nil {
		if err := h.health(ctx); err != nil {
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// writeServiceError maps sentinel errors to HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrOrderBusy):
		w.Header().Set("Retry-After", "1")
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrNonPositiveAmount),
		errors.Is(err, models.ErrMissingReference),
		errors.Is(err, models.ErrVoidReasonRequired),
		errors.Is(err, models.ErrMenuItemUnavailable):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrOrderNotMutable),
		errors.Is(err, models.ErrInvalidItemTransition),
		errors.Is(err, models.ErrInvalidOrderTransition),
		errors.Is(err, models.ErrItemAlreadyServed),
		errors.Is(err, models.ErrEmptyOrder),
		errors.Is(err, models.ErrDiscountExceedsSubtotal),
		errors.Is(err, models.ErrOrderNotReady),
		errors.Is(err, models.ErrBillAlreadyExists),
		errors.Is(err, models.ErrBillNotPayable),
		errors.Is(err, models.ErrBillHasPayments),
		errors.Is(err, models.ErrOverpaymentNotAllowed),
		errors.Is(err, models.ErrTableAlreadyOccupied),
		errors.Is(err, models.ErrSessionOrderActive),
		errors.Is(err, models.ErrSessionNotClosable):
		h.writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request_failed", "Unhandled service error", "", err, nil)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response_encode_failed", "Failed to encode response", "", err, nil)
	}
}
