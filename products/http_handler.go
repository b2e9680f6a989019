package products

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

type HTTPHandler struct {
	service ProductService
	logger  *slog.Logger
}

func NewHTTPHandler(service ProductService, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		service: service,
		logger:  logger,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.handleListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.handleGetProduct)
	mux.HandleFunc("POST /api/products", h.handleCreateProduct)
	mux.HandleFunc("PUT /api/products/{id}", h.handleUpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.handleDeleteProduct)
}

func (h *HTTPHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.FindAllProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list products"})
		return
	}

	writeJSON(w, http.StatusOK, all)
}

func (h *HTTPHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	p, err := h.service.FindProduct(r.Context(), id)
	if errors.Is(err, ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to get product", slog.Int64("product_id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to get product"})
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to create product", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *HTTPHandler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	p, err := h.service.UpdateProduct(r.Context(), id, req)
	if errors.Is(err, ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to update product", slog.Int64("product_id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update product"})
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *HTTPHandler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteProduct(r.Context(), id)
	if errors.Is(err, ErrProductNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Product not found"})
		return
	}
	if err != nil {
		h.logger.Error("failed to delete product", slog.Int64("product_id", id), slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete product"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Product " + strconv.FormatInt(id, 10) + " deleted successfully"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid product id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
