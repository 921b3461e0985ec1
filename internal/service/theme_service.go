package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/repository"
	"academy-platform/internal/tenant"
	"academy-platform/internal/theme"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ThemeUpdate is a dealer's request to change its storefront look. Nil
// documents clear the corresponding override.
type ThemeUpdate struct {
	PresetID *uuid.UUID
	Theme    json.RawMessage
	Layout   json.RawMessage
}

// ThemeService defines theme business logic
type ThemeService interface {
	Effective(ctx context.Context, dealer *domain.Dealer) (theme.Effective, error)
	ListPresets(ctx context.Context, scope tenant.Scope) ([]*domain.ThemePreset, error)
	UpdateTheme(ctx context.Context, scope tenant.Scope, update ThemeUpdate) (theme.Effective, error)
}

type themeService struct {
	dealers  repository.DealerRepository
	presets  repository.ThemePresetRepository
	resolver *theme.Resolver
	logger   *zap.Logger
}

// NewThemeService creates a new instance of ThemeService
func NewThemeService(
	dealers repository.DealerRepository,
	presets repository.ThemePresetRepository,
	resolver *theme.Resolver,
	logger *zap.Logger,
) ThemeService {
	return &themeService{
		dealers:  dealers,
		presets:  presets,
		resolver: resolver,
		logger:   logger,
	}
}

// Effective computes the dealer's theme. A preset reference that no longer
// resolves is treated as no preset.
func (s *themeService) Effective(ctx context.Context, dealer *domain.Dealer) (theme.Effective, error) {
	scope, err := tenant.NewScope(dealer.ID)
	if err != nil {
		return theme.Effective{}, err
	}

	var preset *domain.ThemePreset
	if dealer.ThemePresetID != nil {
		preset, err = s.presets.FindAvailable(ctx, scope, *dealer.ThemePresetID)
		if err != nil {
			if !errors.Is(err, repository.ErrThemePresetNotFound) {
				return theme.Effective{}, fmt.Errorf("failed to load theme preset: %w", err)
			}
			s.logger.Warn("Dealer references a missing theme preset",
				zap.String("dealer_id", dealer.ID.String()),
				zap.String("preset_id", dealer.ThemePresetID.String()),
			)
			preset = nil
		}
	}

	return s.resolver.Resolve(dealer, preset), nil
}

func (s *themeService) ListPresets(ctx context.Context, scope tenant.Scope) ([]*domain.ThemePreset, error) {
	presets, err := s.presets.ListAvailable(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list theme presets: %w", err)
	}
	return presets, nil
}

// UpdateTheme validates both override documents and the preset reference
// before storing anything, then returns the new effective theme.
func (s *themeService) UpdateTheme(ctx context.Context, scope tenant.Scope, update ThemeUpdate) (theme.Effective, error) {
	if err := scope.Check(); err != nil {
		return theme.Effective{}, err
	}

	verr := &ValidationError{}

	if _, err := theme.ParseSettingsOverride(update.Theme); err != nil {
		verr.add("theme", err.Error())
	}
	if _, err := theme.ParseLayoutOverride(update.Layout); err != nil {
		verr.add("layout", err.Error())
	}

	if update.PresetID != nil {
		_, err := s.presets.FindAvailable(ctx, scope, *update.PresetID)
		if errors.Is(err, repository.ErrThemePresetNotFound) {
			verr.add("presetId", "theme preset not found")
		} else if err != nil {
			return theme.Effective{}, fmt.Errorf("failed to load theme preset: %w", err)
		}
	}

	if err := verr.orNil(); err != nil {
		return theme.Effective{}, err
	}

	if err := s.dealers.UpdateTheme(ctx, scope, update.PresetID, nullDocument(update.Theme), nullDocument(update.Layout)); err != nil {
		if errors.Is(err, repository.ErrDealerNotFound) {
			return theme.Effective{}, ErrTenantNotFound
		}
		return theme.Effective{}, fmt.Errorf("failed to update theme: %w", err)
	}

	dealer, err := s.dealers.Get(ctx, scope)
	if err != nil {
		return theme.Effective{}, fmt.Errorf("failed to reload dealer: %w", err)
	}

	return s.Effective(ctx, dealer)
}

// nullDocument maps an empty body or explicit JSON null to no document.
func nullDocument(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	return trimmed
}
