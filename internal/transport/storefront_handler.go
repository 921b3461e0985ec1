package transport

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"academy-platform/internal/domain"
	"academy-platform/internal/middleware"
	"academy-platform/internal/repository"
	"academy-platform/internal/service"
	"academy-platform/internal/theme"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorefrontDealer is the part of a dealer shown on its public page
type StorefrontDealer struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	ContactEmail string `json:"contactEmail,omitempty"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Address      string `json:"address,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	HeroImageURL string `json:"heroImageUrl,omitempty"`
	HeroTitle    string `json:"heroTitle,omitempty"`
	HeroSubtitle string `json:"heroSubtitle,omitempty"`
}

// StorefrontResponse is the dealer profile with its effective theme
type StorefrontResponse struct {
	Dealer StorefrontDealer `json:"dealer"`
	Theme  theme.Effective  `json:"appearance"`
}

// VariantResponse is a purchasable variant on the storefront
type VariantResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	SKU     string  `json:"sku,omitempty"`
	Price   float64 `json:"price"`
	InStock bool    `json:"inStock"`
}

// ProductResponse is a storefront product
type ProductResponse struct {
	ID          string            `json:"id"`
	CategoryID  *string           `json:"categoryId,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       float64           `json:"price"`
	Images      []string          `json:"images"`
	Variants    []VariantResponse `json:"variants"`
}

// ProductListResponse is one page of storefront products
type ProductListResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// StorefrontHandler serves the public, host-resolved storefront
type StorefrontHandler struct {
	themes  service.ThemeService
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(themes service.ThemeService, catalog service.CatalogService, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		themes:  themes,
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers storefront routes behind tenantMiddleware, which
// must put the resolved dealer into the request context.
func (h *StorefrontHandler) RegisterRoutes(r chi.Router, tenantMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/storefront", func(r chi.Router) {
		r.Use(tenantMiddleware)
		r.Get("/", h.GetStorefront)
		r.Get("/theme.css", h.GetThemeCSS)
		r.Get("/products", h.ListProducts)
	})
}

func (h *StorefrontHandler) dealer(w http.ResponseWriter, r *http.Request) (*domain.Dealer, bool) {
	dealer, ok := middleware.DealerFromContext(r.Context())
	if !ok {
		middleware.RespondWithLocalizedError(w, r, http.StatusNotFound, middleware.MsgDealerNotFound)
		return nil, false
	}
	return dealer, true
}

// GetStorefront returns the dealer's public profile and effective theme
func (h *StorefrontHandler) GetStorefront(w http.ResponseWriter, r *http.Request) {
	dealer, ok := h.dealer(w, r)
	if !ok {
		return
	}

	effective, err := h.themes.Effective(r.Context(), dealer)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Storefront theme")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, StorefrontResponse{
		Dealer: StorefrontDealer{
			ID:           dealer.ID.String(),
			Slug:         dealer.Slug,
			Name:         dealer.Name,
			ContactEmail: dealer.ContactEmail,
			ContactPhone: dealer.ContactPhone,
			Address:      dealer.Address,
			LogoURL:      dealer.LogoURL,
			HeroImageURL: dealer.HeroImageURL,
			HeroTitle:    dealer.HeroTitle,
			HeroSubtitle: dealer.HeroSubtitle,
		},
		Theme: effective,
	})
}

// GetThemeCSS renders the effective theme as CSS custom properties
func (h *StorefrontHandler) GetThemeCSS(w http.ResponseWriter, r *http.Request) {
	dealer, ok := h.dealer(w, r)
	if !ok {
		return
	}

	effective, err := h.themes.Effective(r.Context(), dealer)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Storefront theme")
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=60")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, theme.CSS(effective))
}

// ListProducts lists active products of the dealer
func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	dealer, ok := h.dealer(w, r)
	if !ok {
		return
	}
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	filter, fieldErrors := parseProductFilter(r)
	if len(fieldErrors) > 0 {
		middleware.RespondWithValidationErrors(w, r, fieldErrors)
		return
	}

	products, total, err := h.catalog.ListStorefrontProducts(r.Context(), scope, filter)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Product listing")
		return
	}

	items := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}

	h.logger.Debug("Storefront products listed",
		zap.String("dealer_id", dealer.ID.String()),
		zap.Int("count", len(items)),
		zap.Int("total", total),
	)

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Items:    items,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	})
}

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// parseProductFilter reads the listing query string. Paging values out of
// range fall back to the defaults; a malformed category or order is an error.
func parseProductFilter(r *http.Request) (repository.ProductFilter, []middleware.ValidationError) {
	q := r.URL.Query()
	filter := repository.ProductFilter{
		Query:     strings.TrimSpace(q.Get("q")),
		Page:      defaultPage,
		PageSize:  defaultPageSize,
		SortBy:    q.Get("sort"),
		SortOrder: repository.SortOrderDesc,
	}
	var fieldErrors []middleware.ValidationError

	if raw := q.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fieldErrors = append(fieldErrors, middleware.ValidationError{Field: "category", Message: "Must be a valid UUID"})
		} else {
			filter.CategoryID = &id
		}
	}

	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if size, err := strconv.Atoi(q.Get("page_size")); err == nil && size > 0 && size <= maxPageSize {
		filter.PageSize = size
	}

	switch strings.ToLower(q.Get("order")) {
	case "":
	case "asc":
		filter.SortOrder = repository.SortOrderAsc
	case "desc":
		filter.SortOrder = repository.SortOrderDesc
	default:
		fieldErrors = append(fieldErrors, middleware.ValidationError{Field: "order", Message: "Must be one of: asc desc"})
	}

	return filter, fieldErrors
}

func toProductResponse(p service.CatalogProduct) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Images:      p.ImageURLs,
		Variants:    make([]VariantResponse, 0, len(p.Variants)),
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	if p.CategoryID != nil {
		id := p.CategoryID.String()
		resp.CategoryID = &id
	}

	for _, v := range p.Variants {
		price := p.Price
		if v.Price != nil {
			price = *v.Price
		}
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:      v.ID.String(),
			Name:    v.Name,
			SKU:     v.SKU,
			Price:   price,
			InStock: v.Stock > 0,
		})
	}

	return resp
}
