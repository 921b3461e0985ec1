package transport

import (
	"net/http"
	"strings"

	"academy-platform/internal/middleware"
	"academy-platform/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DealerLookupResponse is the public identity of a dealer found by domain
type DealerLookupResponse struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// DealerHandler handles dealer lookup requests
type DealerHandler struct {
	resolver service.TenantResolver
	logger   *zap.Logger
}

// NewDealerHandler creates a new DealerHandler
func NewDealerHandler(resolver service.TenantResolver, logger *zap.Logger) *DealerHandler {
	return &DealerHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// RegisterRoutes registers dealer routes
func (h *DealerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dealers/by-domain", h.GetByDomain)
}

// GetByDomain resolves the dealer serving ?domain=
func (h *DealerHandler) GetByDomain(w http.ResponseWriter, r *http.Request) {
	domainName := strings.TrimSpace(r.URL.Query().Get("domain"))
	if domainName == "" {
		middleware.RespondWithValidationErrors(w, r, []middleware.ValidationError{
			{Field: "domain", Message: "This field is required"},
		})
		return
	}

	dealer, err := h.resolver.ResolveByHost(r.Context(), domainName)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Dealer lookup")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60")
	middleware.RespondWithJSON(w, http.StatusOK, DealerLookupResponse{
		ID:   dealer.ID.String(),
		Slug: dealer.Slug,
		Name: dealer.Name,
	})
}
