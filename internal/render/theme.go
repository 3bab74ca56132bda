package render

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Theme is the presentational configuration surface: colors, fonts, which
// HTML tag each heading level gets, and which section level receives
// emphasis styling. It never affects tree construction.
type Theme struct {
	Colors struct {
		Background string `toml:"background"`
		GroupBand  string `toml:"group_band"`
		UnitBand   string `toml:"unit_band"`
		Heading    string `toml:"heading"`
		Text       string `toml:"text"`
		Accent     string `toml:"accent"`
	} `toml:"colors"`
	Font struct {
		Family string `toml:"family"`
		Size   int    `toml:"size"`
	} `toml:"font"`
	Headings struct {
		GroupTag string `toml:"group_tag"` // h1..h6
		UnitTag  string `toml:"unit_tag"`  // h1..h6
	} `toml:"headings"`
	Emphasis string `toml:"emphasis"` // "group" or "unit"
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	var t Theme
	t.Colors.Background = "#ffffff"
	t.Colors.GroupBand = "#eef2f7"
	t.Colors.UnitBand = "#f9fafb"
	t.Colors.Heading = "#1f2933"
	t.Colors.Text = "#3e4c59"
	t.Colors.Accent = "#2563eb"
	t.Font.Family = "Georgia, serif"
	t.Font.Size = 16
	t.Headings.GroupTag = "h2"
	t.Headings.UnitTag = "h3"
	t.Emphasis = "group"
	return t
}

// LoadTheme reads a TOML theme file, overlaying it on the defaults.
// An empty path returns the default theme.
func LoadTheme(path string) (Theme, error) {
	theme := DefaultTheme()
	if path == "" {
		return theme, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return theme, fmt.Errorf("read theme: %w", err)
	}
	if err := toml.Unmarshal(data, &theme); err != nil {
		return theme, fmt.Errorf("parse theme: %w", err)
	}
	if err := theme.validate(); err != nil {
		return theme, fmt.Errorf("invalid theme %s: %w", path, err)
	}
	return theme, nil
}

var headingTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

func (t Theme) validate() error {
	if !headingTags[t.Headings.GroupTag] {
		return fmt.Errorf("headings.group_tag must be h1..h6, got %q", t.Headings.GroupTag)
	}
	if !headingTags[t.Headings.UnitTag] {
		return fmt.Errorf("headings.unit_tag must be h1..h6, got %q", t.Headings.UnitTag)
	}
	if t.Emphasis != "group" && t.Emphasis != "unit" {
		return fmt.Errorf("emphasis must be %q or %q, got %q", "group", "unit", t.Emphasis)
	}
	if t.Font.Size <= 0 {
		return fmt.Errorf("font.size must be positive, got %d", t.Font.Size)
	}
	return nil
}
