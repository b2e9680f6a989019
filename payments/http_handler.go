package payments

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tgarrido/payments-api/payments/processor"
	"github.com/tgarrido/payments-api/products"
	"github.com/tgarrido/payments-api/users"
)

// Middleware wraps a handler, e.g. with session-token auth
type Middleware func(http.HandlerFunc) http.HandlerFunc

type HTTPHandler struct {
	service PaymentService
	auth    Middleware
	logger  *slog.Logger
}

func NewHTTPHandler(service PaymentService, auth Middleware, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/payments", h.handleCreatePayment)
	mux.HandleFunc("GET /api/payments", h.handleListPayments)
	mux.HandleFunc("GET /api/payments/payment_links", h.auth(h.handlePaymentLinks))
	mux.HandleFunc("GET /api/payments/{id}", h.handleGetPayment)
	mux.HandleFunc("PUT /api/payments/{id}", h.handleUpdatePayment)
	mux.HandleFunc("DELETE /api/payments/{id}", h.handleDeletePayment)
	mux.HandleFunc("POST /api/payments/{id}/intent", h.handlePaymentIntent)
	mux.HandleFunc("POST /api/payments/confirm", h.handleConfirmPayment)
}

func (h *HTTPHandler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.Amount <= 0 || req.UserID <= 0 || req.ProductID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount, user_id and product_id are required"})
		return
	}

	result, err := h.service.CreatePayment(r.Context(), req)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *HTTPHandler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.FindAllPayments(r.Context())
	if err != nil {
		h.logger.Error("failed to list payments", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list payments"})
		return
	}

	writeJSON(w, http.StatusOK, views)
}

func (h *HTTPHandler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	view, err := h.service.FindPayment(r.Context(), id)
	if errors.Is(err, ErrPaymentNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment ID not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get payment", slog.Int64("payment_id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to get payment"})
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *HTTPHandler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	result, err := h.service.UpdatePayment(r.Context(), id, req)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	err := h.service.DeletePayment(r.Context(), id)
	if errors.Is(err, ErrPaymentNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment ID not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete payment", slog.Int64("payment_id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete payment"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment " + strconv.FormatInt(id, 10) + " deleted successfully"})
}

func (h *HTTPHandler) handlePaymentIntent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	charge, err := h.service.PaymentIntent(r.Context(), id)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, charge)
}

func (h *HTTPHandler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}
	if req.PaymentIntentID == "" || req.PaymentMethod == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_intent_id and payment_method are required"})
		return
	}

	charge, err := h.service.ConfirmPayment(r.Context(), req.PaymentIntentID, req.PaymentMethod)
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, charge)
}

func (h *HTTPHandler) handlePaymentLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.service.PaymentLinks(r.Context())
	if err != nil {
		h.writeWorkflowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, links)
}

// writeWorkflowError maps the closed error kinds of the payment workflow to
// HTTP responses. Anything outside the known kinds is a 500 with the fault's
// message.
func (h *HTTPHandler) writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
	case errors.Is(err, products.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
	case errors.Is(err, ErrPaymentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Payment ID not found"})
	default:
		var provErr *processor.ProviderError
		if errors.As(err, &provErr) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "Payment processing failed",
				"details": provErr.Message,
			})
			return
		}
		h.logger.Error("payment workflow error", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *HTTPHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payment id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
