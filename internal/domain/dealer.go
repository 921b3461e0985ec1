package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Dealer is an academy operator account and the unit of data isolation.
type Dealer struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	ParentID          *uuid.UUID      `json:"parent_id,omitempty" db:"parent_id"`
	Slug              string          `json:"slug" db:"slug"`
	Name              string          `json:"name" db:"name"`
	CustomDomain      *string         `json:"custom_domain,omitempty" db:"custom_domain"`
	Subdomain         *string         `json:"subdomain,omitempty" db:"subdomain"`
	IsActive          bool            `json:"is_active" db:"is_active"`
	PublicPageEnabled bool            `json:"public_page_enabled" db:"public_page_enabled"`
	ContactEmail      string          `json:"contact_email" db:"contact_email"`
	ContactPhone      string          `json:"contact_phone" db:"contact_phone"`
	Address           string          `json:"address" db:"address"`
	LogoURL           string          `json:"logo_url" db:"logo_url"`
	HeroImageURL      string          `json:"hero_image_url" db:"hero_image_url"`
	HeroTitle         string          `json:"hero_title" db:"hero_title"`
	HeroSubtitle      string          `json:"hero_subtitle" db:"hero_subtitle"`
	ThemePresetID     *uuid.UUID      `json:"theme_preset_id,omitempty" db:"theme_preset_id"`
	ThemeOverrides    json.RawMessage `json:"theme_overrides,omitempty" db:"theme_overrides"`
	LayoutOverrides   json.RawMessage `json:"layout_overrides,omitempty" db:"layout_overrides"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// IsPublic reports whether the dealer may be served on a public storefront.
func (d *Dealer) IsPublic() bool {
	return d != nil && d.IsActive && d.PublicPageEnabled
}

// DealerDomain is a domain alias pointing at a dealer.
type DealerDomain struct {
	ID         uuid.UUID `json:"id" db:"id"`
	DealerID   uuid.UUID `json:"dealer_id" db:"dealer_id"`
	Domain     string    `json:"domain" db:"domain"`
	IsVerified bool      `json:"is_verified" db:"is_verified"`
	IsPrimary  bool      `json:"is_primary" db:"is_primary"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
