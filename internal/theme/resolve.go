package theme

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"academy-platform/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Effective is the merged theme a storefront renders with.
type Effective struct {
	PresetID   *uuid.UUID `json:"presetId,omitempty"`
	PresetName string     `json:"presetName,omitempty"`
	Settings   Settings   `json:"theme"`
	Layout     Layout     `json:"layout"`
}

// Layer names reported in Issue.Layer.
const (
	LayerPresetTheme    = "preset.theme"
	LayerPresetLayout   = "preset.layout"
	LayerOverrideTheme  = "override.theme"
	LayerOverrideLayout = "override.layout"
)

// Issue records a document that was ignored during Merge.
type Issue struct {
	Layer string
	Err   error
}

// Merge layers defaults, preset and overrides. It never fails; ignored
// documents are reported as issues.
func Merge(preset *domain.ThemePreset, themeOverride, layoutOverride json.RawMessage) (Effective, []Issue) {
	var issues []Issue

	eff := Effective{
		Settings: Defaults(),
		Layout:   DefaultLayout(),
	}

	if preset != nil {
		id := preset.ID
		eff.PresetID = &id
		eff.PresetName = preset.Name

		if o, err := ParseSettingsOverride(preset.Settings); err != nil {
			issues = append(issues, Issue{Layer: LayerPresetTheme, Err: err})
		} else {
			eff.Settings = eff.Settings.Apply(o)
		}

		if o, err := ParseLayoutOverride(preset.Layout); err != nil {
			issues = append(issues, Issue{Layer: LayerPresetLayout, Err: err})
		} else {
			eff.Layout = eff.Layout.Apply(o)
		}
	}

	if o, err := ParseSettingsOverride(themeOverride); err != nil {
		issues = append(issues, Issue{Layer: LayerOverrideTheme, Err: err})
	} else {
		eff.Settings = eff.Settings.Apply(o)
	}

	if o, err := ParseLayoutOverride(layoutOverride); err != nil {
		issues = append(issues, Issue{Layer: LayerOverrideLayout, Err: err})
	} else {
		eff.Layout = eff.Layout.Apply(o)
	}

	return eff, issues
}

// Resolver merges themes and logs ignored documents.
type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve computes the effective theme for dealer using preset, which may be nil.
func (r *Resolver) Resolve(dealer *domain.Dealer, preset *domain.ThemePreset) Effective {
	eff, issues := Merge(preset, dealer.ThemeOverrides, dealer.LayoutOverrides)
	for _, issue := range issues {
		r.logger.Warn("Ignoring invalid theme document",
			zap.String("dealer_id", dealer.ID.String()),
			zap.String("layer", issue.Layer),
			zap.Error(issue.Err),
		)
	}
	return eff
}

// CSS renders the effective settings as custom properties on :root.
func CSS(eff Effective) string {
	s := eff.Settings
	vars := map[string]string{
		"--color-primary":    s.PrimaryColor,
		"--color-secondary":  s.SecondaryColor,
		"--color-accent":     s.AccentColor,
		"--color-background": s.BackgroundColor,
		"--color-text":       s.TextColor,
		"--font-heading":     fontStack(s.HeadingFont),
		"--font-body":        fontStack(s.BodyFont),
		"--radius":           fmt.Sprintf("%dpx", s.BorderRadius),
		"--button-radius":    buttonRadius(s),
		"--products-per-row": fmt.Sprintf("%d", eff.Layout.ProductsPerRow),
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %s: %s;\n", name, vars[name])
	}
	b.WriteString("}\n")
	return b.String()
}

func fontStack(family string) string {
	family = strings.NewReplacer(`"`, "", `'`, "", ";", "", "{", "", "}", "").Replace(family)
	return fmt.Sprintf("%q, sans-serif", family)
}

func buttonRadius(s Settings) string {
	switch s.ButtonStyle {
	case "pill":
		return "9999px"
	case "square":
		return "0"
	default:
		return fmt.Sprintf("%dpx", s.BorderRadius)
	}
}
