package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/annaigorevna5/sensual-beauty/internal/cart"
	"github.com/annaigorevna5/sensual-beauty/internal/catalog"
	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	apperrors "github.com/annaigorevna5/sensual-beauty/pkg/errors"
	"github.com/annaigorevna5/sensual-beauty/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. Products are
// resolved against the catalog at the boundary: the store itself accepts
// whatever line it is handed.
type CartHandler struct {
	store   *cart.Store
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(store *cart.Store, cat *catalog.Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		store:   store,
		catalog: cat,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding an item to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest is the JSON request body for updating an item's quantity.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Data: h.store.Snapshot()})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	product, ok := h.catalog.ProductByID(req.ProductID)
	if !ok {
		writeError(w, r, h.logger, apperrors.NotFound("product", req.ProductID))
		return
	}

	item := domain.CartItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: req.Quantity,
		Image:    product.Image,
		Category: product.Category,
	}

	if err := h.store.AddItem(r.Context(), item); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: h.store.Snapshot()})
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{productId}.
// A quantity of zero removes the line; an unknown product is a no-op and
// still answers with the current snapshot.
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.store.UpdateQuantity(r.Context(), productID, req.Quantity); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: h.store.Snapshot()})
}

// RemoveItem handles DELETE /api/v1/cart/items/{productId}. Removal is
// idempotent.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.store.RemoveItem(r.Context(), chi.URLParam(r, "productId"))
	writeJSON(w, http.StatusOK, response{Data: h.store.Snapshot()})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Clear(r.Context())
	writeJSON(w, http.StatusOK, response{Data: map[string]string{"status": "cleared"}})
}
