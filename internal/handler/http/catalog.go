package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/annaigorevna5/sensual-beauty/internal/catalog"
	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	apperrors "github.com/annaigorevna5/sensual-beauty/pkg/errors"
	"github.com/annaigorevna5/sensual-beauty/pkg/validator"
)

// CatalogHandler handles HTTP requests for browsing the catalog.
type CatalogHandler struct {
	catalog *catalog.Catalog
	query   *catalog.Query
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(cat *catalog.Catalog, query *catalog.Query, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: cat,
		query:   query,
		logger:  logger,
	}
}

// --- Request / Response DTOs ---

// SetFiltersRequest is the JSON request body for updating browse criteria.
// Absent fields leave the corresponding criterion untouched.
type SetFiltersRequest struct {
	Category *string   `json:"category"`
	MinPrice *int64    `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice *int64    `json:"max_price" validate:"omitempty,gte=0"`
	Tags     *[]string `json:"tags"`
	Search   *string   `json:"search"`
	Sort     *string   `json:"sort"`
}

// ProductListResponse is the payload for the product grid.
type ProductListResponse struct {
	Products []domain.Product `json:"products"`
	Matches  int              `json:"matches"`
	Revealed int              `json:"revealed"`
	Total    int              `json:"total"`
}

// CategoryResponse is a category with its product count.
type CategoryResponse struct {
	domain.Category
	ProductCount int `json:"product_count"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/catalog/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Data: h.productList()})
}

// SetFilters handles PUT /api/v1/catalog/filters
func (h *CatalogHandler) SetFilters(w http.ResponseWriter, r *http.Request) {
	var req SetFiltersRequest
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

	if req.Sort != nil && !catalog.ValidSortKey(*req.Sort) {
		writeError(w, r, h.logger, apperrors.InvalidInput("unknown sort key: "+*req.Sort))
		return
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		writeError(w, r, h.logger, apperrors.InvalidInput("min_price must not exceed max_price"))
		return
	}

	if req.Category != nil {
		h.query.SetCategory(*req.Category)
	}
	if req.MinPrice != nil || req.MaxPrice != nil {
		c := h.query.Criteria()
		min, max := c.MinPrice, c.MaxPrice
		if req.MinPrice != nil {
			min = *req.MinPrice
		}
		if req.MaxPrice != nil {
			max = *req.MaxPrice
		}
		h.query.SetPriceRange(min, max)
	}
	if req.Tags != nil {
		h.query.SetTags(*req.Tags)
	}
	if req.Search != nil {
		h.query.SetSearch(*req.Search)
	}
	if req.Sort != nil {
		h.query.SetSort(*req.Sort)
	}

	writeJSON(w, http.StatusOK, response{Data: h.productList()})
}

// RevealMore handles POST /api/v1/catalog/reveal
func (h *CatalogHandler) RevealMore(w http.ResponseWriter, r *http.Request) {
	h.query.RevealMore()
	writeJSON(w, http.StatusOK, response{Data: h.productList()})
}

// Reset handles POST /api/v1/catalog/reset
func (h *CatalogHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.query.Reset()
	writeJSON(w, http.StatusOK, response{Data: h.productList()})
}

// ListCategories handles GET /api/v1/catalog/categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{
			Category:     c,
			ProductCount: h.catalog.CountByCategory(c.ID),
		}
	}
	writeJSON(w, http.StatusOK, response{Data: out})
}

// ListTags handles GET /api/v1/catalog/tags
func (h *CatalogHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Data: catalog.DistinctTags(h.catalog.Products())})
}

func (h *CatalogHandler) productList() ProductListResponse {
	visible := h.query.Visible()
	return ProductListResponse{
		Products: visible,
		Matches:  h.query.Matches(),
		Revealed: h.query.Revealed(),
		Total:    h.catalog.Len(),
	}
}
