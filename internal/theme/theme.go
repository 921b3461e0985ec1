// Package theme layers built-in defaults, a named preset and a per-dealer
// override into the effective storefront theme.
//
// Theme settings and layout are resolved independently. A document that
// cannot be decoded or fails validation is dropped and the layer below it
// stands, so dealer-supplied configuration never breaks page rendering.
package theme

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDocument wraps every decode or validation failure of a theme document.
var ErrInvalidDocument = errors.New("invalid theme document")

var validate = validator.New()

// Settings is the fully populated color and typography configuration.
type Settings struct {
	PrimaryColor    string `json:"primaryColor"`
	SecondaryColor  string `json:"secondaryColor"`
	AccentColor     string `json:"accentColor"`
	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`
	HeadingFont     string `json:"headingFont"`
	BodyFont        string `json:"bodyFont"`
	BorderRadius    int    `json:"borderRadius"`
	ButtonStyle     string `json:"buttonStyle"`
}

// Layout is the fully populated page structure configuration.
type Layout struct {
	HeaderStyle    string `json:"headerStyle"`
	HeroEnabled    bool   `json:"heroEnabled"`
	HeroAlignment  string `json:"heroAlignment"`
	ShowProducts   bool   `json:"showProducts"`
	ShowGroups     bool   `json:"showGroups"`
	ShowContacts   bool   `json:"showContacts"`
	ProductsPerRow int    `json:"productsPerRow"`
	FooterText     string `json:"footerText"`
}

// SettingsOverride is a partial Settings document. Nil fields leave the lower layer untouched.
type SettingsOverride struct {
	PrimaryColor    *string `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor  *string `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
	AccentColor     *string `json:"accentColor,omitempty" validate:"omitempty,hexcolor"`
	BackgroundColor *string `json:"backgroundColor,omitempty" validate:"omitempty,hexcolor"`
	TextColor       *string `json:"textColor,omitempty" validate:"omitempty,hexcolor"`
	HeadingFont     *string `json:"headingFont,omitempty" validate:"omitempty,min=1,max=64,excludesall=;{}<>"`
	BodyFont        *string `json:"bodyFont,omitempty" validate:"omitempty,min=1,max=64,excludesall=;{}<>"`
	BorderRadius    *int    `json:"borderRadius,omitempty" validate:"omitempty,min=0,max=48"`
	ButtonStyle     *string `json:"buttonStyle,omitempty" validate:"omitempty,oneof=rounded square pill"`
}

// LayoutOverride is a partial Layout document.
type LayoutOverride struct {
	HeaderStyle    *string `json:"headerStyle,omitempty" validate:"omitempty,oneof=classic centered minimal"`
	HeroEnabled    *bool   `json:"heroEnabled,omitempty"`
	HeroAlignment  *string `json:"heroAlignment,omitempty" validate:"omitempty,oneof=left center right"`
	ShowProducts   *bool   `json:"showProducts,omitempty"`
	ShowGroups     *bool   `json:"showGroups,omitempty"`
	ShowContacts   *bool   `json:"showContacts,omitempty"`
	ProductsPerRow *int    `json:"productsPerRow,omitempty" validate:"omitempty,min=1,max=6"`
	FooterText     *string `json:"footerText,omitempty" validate:"omitempty,max=500"`
}

// Defaults is the bottom layer used when no preset applies.
func Defaults() Settings {
	return Settings{
		PrimaryColor:    "#1A7F37",
		SecondaryColor:  "#0F5132",
		AccentColor:     "#FFC107",
		BackgroundColor: "#FFFFFF",
		TextColor:       "#212529",
		HeadingFont:     "Montserrat",
		BodyFont:        "Inter",
		BorderRadius:    8,
		ButtonStyle:     "rounded",
	}
}

// DefaultLayout is the bottom layout layer.
func DefaultLayout() Layout {
	return Layout{
		HeaderStyle:    "classic",
		HeroEnabled:    true,
		HeroAlignment:  "left",
		ShowProducts:   true,
		ShowGroups:     true,
		ShowContacts:   true,
		ProductsPerRow: 3,
	}
}

// ParseSettingsOverride decodes and validates a settings document. An empty
// or JSON null document yields nil without error.
func ParseSettingsOverride(raw []byte) (*SettingsOverride, error) {
	var o SettingsOverride
	ok, err := decodeStrict(raw, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

// ParseLayoutOverride decodes and validates a layout document.
func ParseLayoutOverride(raw []byte) (*LayoutOverride, error) {
	var o LayoutOverride
	ok, err := decodeStrict(raw, &o)
	if err != nil || !ok {
		return nil, err
	}
	return &o, nil
}

func decodeStrict(raw []byte, out interface{}) (bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if dec.More() {
		return false, fmt.Errorf("%w: trailing data", ErrInvalidDocument)
	}
	if err := validate.Struct(out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return true, nil
}

// Apply returns s with every non-nil field of o applied.
func (s Settings) Apply(o *SettingsOverride) Settings {
	if o == nil {
		return s
	}
	setString(&s.PrimaryColor, o.PrimaryColor)
	setString(&s.SecondaryColor, o.SecondaryColor)
	setString(&s.AccentColor, o.AccentColor)
	setString(&s.BackgroundColor, o.BackgroundColor)
	setString(&s.TextColor, o.TextColor)
	setString(&s.HeadingFont, o.HeadingFont)
	setString(&s.BodyFont, o.BodyFont)
	if o.BorderRadius != nil {
		s.BorderRadius = *o.BorderRadius
	}
	setString(&s.ButtonStyle, o.ButtonStyle)
	return s
}

// Apply returns l with every non-nil field of o applied.
func (l Layout) Apply(o *LayoutOverride) Layout {
	if o == nil {
		return l
	}
	setString(&l.HeaderStyle, o.HeaderStyle)
	setBool(&l.HeroEnabled, o.HeroEnabled)
	setString(&l.HeroAlignment, o.HeroAlignment)
	setBool(&l.ShowProducts, o.ShowProducts)
	setBool(&l.ShowGroups, o.ShowGroups)
	setBool(&l.ShowContacts, o.ShowContacts)
	if o.ProductsPerRow != nil {
		l.ProductsPerRow = *o.ProductsPerRow
	}
	setString(&l.FooterText, o.FooterText)
	return l
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
