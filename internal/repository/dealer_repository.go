package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

var (
	ErrDealerNotFound = errors.New("dealer not found")
)

// DealerRepository defines data access for dealers and their domain aliases.
//
// The Find* lookups run before a tenant is known and are therefore the only
// unscoped reads in the package.
type DealerRepository interface {
	FindByOwnDomain(ctx context.Context, host, subdomainLabel string) (*domain.Dealer, error)
	FindByVerifiedAlias(ctx context.Context, host string) (*domain.Dealer, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Dealer, error)
	Get(ctx context.Context, scope tenant.Scope) (*domain.Dealer, error)
	UpdateTheme(ctx context.Context, scope tenant.Scope, presetID *uuid.UUID, themeOverrides, layoutOverrides json.RawMessage) error
}

type dealerRepository struct {
	db *sql.DB
}

// NewDealerRepository creates a new instance of DealerRepository
func NewDealerRepository(db *sql.DB) DealerRepository {
	return &dealerRepository{db: db}
}

const dealerColumns = `
	d.id, d.parent_id, d.slug, d.name, d.custom_domain, d.subdomain, d.is_active,
	d.public_page_enabled, d.contact_email, d.contact_phone, d.address, d.logo_url,
	d.hero_image_url, d.hero_title, d.hero_subtitle, d.theme_preset_id,
	d.theme_overrides, d.layout_overrides, d.created_at, d.updated_at`

func scanDealer(row rowScanner) (*domain.Dealer, error) {
	var (
		dealer                                 domain.Dealer
		parentID, presetID                     uuid.NullUUID
		customDomain, subdomain                sql.NullString
		email, phone, address, logo, heroImage sql.NullString
		heroTitle, heroSubtitle                sql.NullString
		themeOverrides, layoutOverrides        []byte
	)

	err := row.Scan(
		&dealer.ID,
		&parentID,
		&dealer.Slug,
		&dealer.Name,
		&customDomain,
		&subdomain,
		&dealer.IsActive,
		&dealer.PublicPageEnabled,
		&email,
		&phone,
		&address,
		&logo,
		&heroImage,
		&heroTitle,
		&heroSubtitle,
		&presetID,
		&themeOverrides,
		&layoutOverrides,
		&dealer.CreatedAt,
		&dealer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		dealer.ParentID = &parentID.UUID
	}
	if presetID.Valid {
		dealer.ThemePresetID = &presetID.UUID
	}
	if customDomain.Valid {
		dealer.CustomDomain = &customDomain.String
	}
	if subdomain.Valid {
		dealer.Subdomain = &subdomain.String
	}
	dealer.ContactEmail = email.String
	dealer.ContactPhone = phone.String
	dealer.Address = address.String
	dealer.LogoURL = logo.String
	dealer.HeroImageURL = heroImage.String
	dealer.HeroTitle = heroTitle.String
	dealer.HeroSubtitle = heroSubtitle.String
	dealer.ThemeOverrides = themeOverrides
	dealer.LayoutOverrides = layoutOverrides

	return &dealer, nil
}

func (r *dealerRepository) findOne(ctx context.Context, query string, args ...interface{}) (*domain.Dealer, error) {
	dealer, err := scanDealer(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDealerNotFound
		}
		return nil, fmt.Errorf("failed to find dealer: %w", err)
	}
	return dealer, nil
}

// FindByOwnDomain matches host against the dealer's custom domain or
// subdomain column. subdomainLabel, when not empty, is also matched against
// the subdomain column. Stored values are compared in the same normalized
// form as the request host. Only active dealers with a public page are
// returned.
func (r *dealerRepository) FindByOwnDomain(ctx context.Context, host, subdomainLabel string) (*domain.Dealer, error) {
	query := `
		SELECT ` + dealerColumns + `
		FROM dealers d
		WHERE (normalize_host(d.custom_domain) = $1
		       OR normalize_host(d.subdomain) = $1
		       OR ($2 <> '' AND normalize_host(d.subdomain) = $2))
		  AND d.is_active AND d.public_page_enabled
		ORDER BY (normalize_host(d.custom_domain) = $1) DESC NULLS LAST, d.created_at
		LIMIT 1
	`
	return r.findOne(ctx, query, host, subdomainLabel)
}

// FindByVerifiedAlias matches host against the normalized domain of verified
// rows of dealer_domains.
func (r *dealerRepository) FindByVerifiedAlias(ctx context.Context, host string) (*domain.Dealer, error) {
	query := `
		SELECT ` + dealerColumns + `
		FROM dealer_domains dd
		JOIN dealers d ON d.id = dd.dealer_id
		WHERE normalize_host(dd.domain) = $1 AND dd.is_verified
		  AND d.is_active AND d.public_page_enabled
		LIMIT 1
	`
	return r.findOne(ctx, query, host)
}

// FindBySlug returns the dealer with slug regardless of its flags; callers
// decide which flags they require.
func (r *dealerRepository) FindBySlug(ctx context.Context, slug string) (*domain.Dealer, error) {
	query := `SELECT ` + dealerColumns + ` FROM dealers d WHERE d.slug = $1`
	return r.findOne(ctx, query, slug)
}

// Get returns the dealer the scope belongs to.
func (r *dealerRepository) Get(ctx context.Context, scope tenant.Scope) (*domain.Dealer, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}
	query := `SELECT ` + dealerColumns + ` FROM dealers d WHERE d.id = $1`
	return r.findOne(ctx, query, scope.DealerID())
}

// UpdateTheme stores the dealer's preset reference and override documents.
func (r *dealerRepository) UpdateTheme(ctx context.Context, scope tenant.Scope, presetID *uuid.UUID, themeOverrides, layoutOverrides json.RawMessage) error {
	if err := scope.Check(); err != nil {
		return err
	}

	query := `
		UPDATE dealers
		SET theme_preset_id = $2, theme_overrides = $3, layout_overrides = $4
		WHERE id = $1
	`

	var preset interface{}
	if presetID != nil {
		preset = *presetID
	}

	result, err := r.db.ExecContext(ctx, query, scope.DealerID(), preset, jsonArg(themeOverrides), jsonArg(layoutOverrides))
	if err != nil {
		return fmt.Errorf("failed to update dealer theme: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrDealerNotFound
	}

	return nil
}
