package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

var (
	ErrThemePresetNotFound = errors.New("theme preset not found")
)

// ThemePresetRepository defines data access for theme presets. A dealer sees
// every system preset plus its own custom presets.
type ThemePresetRepository interface {
	ListAvailable(ctx context.Context, scope tenant.Scope) ([]*domain.ThemePreset, error)
	FindAvailable(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.ThemePreset, error)
}

type themePresetRepository struct {
	db *sql.DB
}

// NewThemePresetRepository creates a new instance of ThemePresetRepository
func NewThemePresetRepository(db *sql.DB) ThemePresetRepository {
	return &themePresetRepository{db: db}
}

func scanThemePreset(row rowScanner) (*domain.ThemePreset, error) {
	var (
		preset           domain.ThemePreset
		dealerID         uuid.NullUUID
		settings, layout []byte
	)
	err := row.Scan(
		&preset.ID,
		&dealerID,
		&preset.Name,
		&preset.IsSystem,
		&settings,
		&layout,
		&preset.CreatedAt,
		&preset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if dealerID.Valid {
		preset.DealerID = &dealerID.UUID
	}
	preset.Settings = settings
	preset.Layout = layout
	return &preset, nil
}

// ListAvailable returns system presets first, then the dealer's own, by name.
func (r *themePresetRepository) ListAvailable(ctx context.Context, scope tenant.Scope) ([]*domain.ThemePreset, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, dealer_id, name, is_system, settings, layout, created_at, updated_at
		FROM theme_presets
		WHERE is_system OR dealer_id = $1
		ORDER BY is_system DESC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, scope.DealerID())
	if err != nil {
		return nil, fmt.Errorf("failed to list theme presets: %w", err)
	}
	defer rows.Close()

	presets := []*domain.ThemePreset{}
	for rows.Next() {
		preset, err := scanThemePreset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan theme preset: %w", err)
		}
		presets = append(presets, preset)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating theme presets: %w", err)
	}

	return presets, nil
}

// FindAvailable returns the preset if it is a system preset or owned by the scope's dealer.
func (r *themePresetRepository) FindAvailable(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.ThemePreset, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, dealer_id, name, is_system, settings, layout, created_at, updated_at
		FROM theme_presets
		WHERE id = $1 AND (is_system OR dealer_id = $2)
	`

	preset, err := scanThemePreset(r.db.QueryRowContext(ctx, query, id, scope.DealerID()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrThemePresetNotFound
		}
		return nil, fmt.Errorf("failed to find theme preset: %w", err)
	}

	return preset, nil
}
