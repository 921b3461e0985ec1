package transport

import (
	"net/http"

	"academy-platform/internal/middleware"
	"academy-platform/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CategoryResponse represents a product category
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

// CategoryHandler handles dashboard category requests
type CategoryHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog service.CatalogService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers category routes
func (h *CategoryHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/api/dashboard/categories", h.ListCategories)
}

// ListCategories returns the categories of the authenticated dealer
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	categories, err := h.catalog.ListCategories(r.Context(), scope)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Category listing")
		return
	}

	response := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		response = append(response, CategoryResponse{
			ID:        c.ID.String(),
			Name:      c.Name,
			Slug:      c.Slug,
			SortOrder: c.SortOrder,
			IsActive:  c.IsActive,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}
