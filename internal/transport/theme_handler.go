package transport

import (
	"encoding/json"
	"net/http"

	"academy-platform/internal/middleware"
	"academy-platform/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UpdateThemeRequest represents the theme update payload. theme and layout
// are validated as theme documents by the service.
type UpdateThemeRequest struct {
	PresetID *string         `json:"presetId" validate:"omitempty,uuid"`
	Theme    json.RawMessage `json:"theme"`
	Layout   json.RawMessage `json:"layout"`
}

// ThemePresetResponse is a preset a dealer may pick
type ThemePresetResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	IsSystem bool            `json:"isSystem"`
	Theme    json.RawMessage `json:"theme,omitempty"`
	Layout   json.RawMessage `json:"layout,omitempty"`
}

// ThemeHandler handles dashboard theme requests
type ThemeHandler struct {
	themes service.ThemeService
	logger *zap.Logger
}

// NewThemeHandler creates a new ThemeHandler
func NewThemeHandler(themes service.ThemeService, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{
		themes: themes,
		logger: logger,
	}
}

// RegisterRoutes registers theme routes. Only owners and managers may
// change the storefront theme.
func (h *ThemeHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/api/theme-presets", h.ListPresets)
		r.With(middleware.RequireRole([]string{middleware.RoleOwner, middleware.RoleManager}, h.logger)).
			Put("/api/dashboard/theme", h.UpdateTheme)
	})
}

// ListPresets returns system presets and the dealer's own presets
func (h *ThemeHandler) ListPresets(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	presets, err := h.themes.ListPresets(r.Context(), scope)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Theme preset listing")
		return
	}

	response := make([]ThemePresetResponse, 0, len(presets))
	for _, p := range presets {
		response = append(response, ThemePresetResponse{
			ID:       p.ID.String(),
			Name:     p.Name,
			IsSystem: p.IsSystem,
			Theme:    p.Settings,
			Layout:   p.Layout,
		})
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// UpdateTheme stores the dealer's preset choice and overrides and returns
// the resulting effective theme
func (h *ThemeHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}

	var req UpdateThemeRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	update := service.ThemeUpdate{
		Theme:  req.Theme,
		Layout: req.Layout,
	}
	if req.PresetID != nil {
		id, err := uuid.Parse(*req.PresetID)
		if err != nil {
			middleware.RespondWithValidationErrors(w, r, []middleware.ValidationError{
				{Field: "presetId", Message: "Must be a valid UUID"},
			})
			return
		}
		update.PresetID = &id
	}

	effective, err := h.themes.UpdateTheme(r.Context(), scope, update)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Theme update")
		return
	}

	h.logger.Info("Dealer theme updated", zap.String("dealer_id", scope.String()))
	middleware.RespondWithJSON(w, http.StatusOK, effective)
}
