package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ThemePreset is a named bundle of theme and layout defaults. System presets
// have no dealer and are never modified.
type ThemePreset struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	DealerID  *uuid.UUID      `json:"dealer_id,omitempty" db:"dealer_id"`
	Name      string          `json:"name" db:"name"`
	IsSystem  bool            `json:"is_system" db:"is_system"`
	Settings  json.RawMessage `json:"settings" db:"settings"`
	Layout    json.RawMessage `json:"layout" db:"layout"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
