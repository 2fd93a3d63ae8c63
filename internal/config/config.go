// Package config provides configuration loading and defaults for the tile
// generator.
//
// Configuration is loaded from a TOML file in the user's data directory. The
// package handles the render spec profiles (canvas resolution, supersampling,
// layout offsets), badge sourcing, font selection, and logging with sensible
// defaults. Two profiles ship built in: "sd" (480x270) and "fhd" (1920x1080),
// both 16:9 and rendered at 2x for antialiasing.
package config

import (
	"fmt"
	"image/color"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ctvtile/tilegen/internal/badge"
	"github.com/ctvtile/tilegen/internal/render"
)

// profileNameRe validates profile names: lowercase alphanumeric with hyphens.
var profileNameRe = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// Font holds typeface selection settings.
	Font FontConfig `toml:"font"`
	// Badges holds badge sourcing settings.
	Badges BadgesConfig `toml:"badges"`
	// Defaults holds the render spec fields inherited by all profiles.
	Defaults ProfileConfig `toml:"defaults"`
	// Profiles maps profile names (e.g. "sd", "fhd") to their overrides.
	Profiles map[string]ProfileConfig `toml:"profiles"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// FontConfig holds typeface selection settings. Both fields are optional;
// the embedded Go Regular face is the terminal fallback.
type FontConfig struct {
	// File is a local font file path (TTF, OTF, or WOFF2).
	File string `toml:"file"`
	// Fallback is a Google Fonts spec (e.g. "google:Inter:800") tried when
	// File is unset or unusable.
	Fallback string `toml:"fallback"`
}

// BadgesConfig holds badge sourcing settings.
type BadgesConfig struct {
	// AssetDir is the local badge asset directory. Empty means the data
	// directory's badges/ subdirectory.
	AssetDir string `toml:"asset_dir"`
	// Sources lists source names tried in order ("local", "remote").
	Sources []string `toml:"sources"`
	// AppStoreURL and GooglePlayURL override the vendor badge URLs.
	AppStoreURL   string `toml:"app_store_url"`
	GooglePlayURL string `toml:"google_play_url"`
	// AppStorePattern and GooglePlayPattern override the local asset globs.
	AppStorePattern   string `toml:"app_store_pattern"`
	GooglePlayPattern string `toml:"google_play_pattern"`
}

// ProfileConfig holds one render profile's spec fields. Zero values inherit
// from the defaults section; boolean toggles use pointers so an explicit
// false still overrides.
type ProfileConfig struct {
	// Width and Height are the published canvas dimensions in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`
	// Scale is the supersample factor (1 or 2).
	Scale int `toml:"scale"`
	// IconFraction sizes the icon slot as a fraction of canvas height.
	IconFraction float64 `toml:"icon_fraction"`
	// IconCornerFraction is the icon corner radius fraction, in (0, 0.5].
	IconCornerFraction float64 `toml:"icon_corner_fraction"`
	// IconCenterVertical centers the icon slot vertically.
	IconCenterVertical *bool `toml:"icon_center_vertical"`
	// IconTopOffset positions the icon slot top when not centered.
	IconTopOffset int `toml:"icon_top_offset"`
	// Margin is the left/right canvas inset.
	Margin int `toml:"margin"`
	// BadgeWidth is each badge's display width.
	BadgeWidth int `toml:"badge_width"`
	// BadgeGap is the vertical gap between the stacked badges.
	BadgeGap int `toml:"badge_gap"`
	// Label toggles the uppercased app name under the icon.
	Label *bool `toml:"label"`
	// LabelFontSize is the label point size.
	LabelFontSize float64 `toml:"label_font_size"`
	// CTA is an optional caption drawn under the badge column.
	CTA string `toml:"cta"`
	// CTAFontSize is the caption point size.
	CTAFontSize float64 `toml:"cta_font_size"`
	// Background, PlaceholderFill, and TextColor are "#RRGGBB" hex colors.
	Background      string `toml:"background"`
	PlaceholderFill string `toml:"placeholder_fill"`
	TextColor       string `toml:"text_color"`
}

// ///////////////////////////////////////////////
// Defaults and Loading
// ///////////////////////////////////////////////

// Default returns the built-in configuration: the layout constants of the
// standard CTV tile, plus the "sd" and "fhd" profiles.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", MaxSizeMB: 10},
		Defaults: ProfileConfig{
			Width:              480,
			Height:             270,
			Scale:              2,
			IconFraction:       0.75,
			IconCornerFraction: 0.22,
			IconCenterVertical: boolPtr(true),
			Margin:             40,
			BadgeWidth:         180,
			BadgeGap:           10,
			Label:              boolPtr(false),
			LabelFontSize:      28,
			CTAFontSize:        18,
			Background:         "#F8F8F8",
			PlaceholderFill:    "#00D4AA",
			TextColor:          "#222222",
		},
		Profiles: map[string]ProfileConfig{
			"sd": {},
			"fhd": {
				Width:         1920,
				Height:        1080,
				Margin:        160,
				BadgeWidth:    720,
				BadgeGap:      40,
				LabelFontSize: 112,
				CTAFontSize:   72,
			},
		},
	}
}

// Load reads the config file at path, layered over the built-in defaults.
// A missing file is not an error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ///////////////////////////////////////////////
// Spec Resolution
// ///////////////////////////////////////////////

// ResolvedSpec returns the effective render spec for a profile, with the
// defaults section applied under the profile's non-zero overrides.
func (c *Config) ResolvedSpec(profile string) (render.Spec, error) {
	if !profileNameRe.MatchString(profile) {
		return render.Spec{}, fmt.Errorf("invalid profile name %q", profile)
	}
	pc, ok := c.Profiles[profile]
	if !ok {
		return render.Spec{}, fmt.Errorf("unknown profile %q", profile)
	}

	merged := c.Defaults
	mergeProfile(&merged, pc)
	spec, err := merged.toSpec()
	if err != nil {
		return render.Spec{}, fmt.Errorf("profile %q: %w", profile, err)
	}
	return spec, nil
}

// ProfileNames returns the configured profile names (unordered).
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

// mergeProfile applies non-zero fields from src onto dst.
func mergeProfile(dst *ProfileConfig, src ProfileConfig) {
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if src.Scale != 0 {
		dst.Scale = src.Scale
	}
	if src.IconFraction != 0 {
		dst.IconFraction = src.IconFraction
	}
	if src.IconCornerFraction != 0 {
		dst.IconCornerFraction = src.IconCornerFraction
	}
	if src.IconCenterVertical != nil {
		dst.IconCenterVertical = src.IconCenterVertical
	}
	if src.IconTopOffset != 0 {
		dst.IconTopOffset = src.IconTopOffset
	}
	if src.Margin != 0 {
		dst.Margin = src.Margin
	}
	if src.BadgeWidth != 0 {
		dst.BadgeWidth = src.BadgeWidth
	}
	if src.BadgeGap != 0 {
		dst.BadgeGap = src.BadgeGap
	}
	if src.Label != nil {
		dst.Label = src.Label
	}
	if src.LabelFontSize != 0 {
		dst.LabelFontSize = src.LabelFontSize
	}
	if src.CTA != "" {
		dst.CTA = src.CTA
	}
	if src.CTAFontSize != 0 {
		dst.CTAFontSize = src.CTAFontSize
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.PlaceholderFill != "" {
		dst.PlaceholderFill = src.PlaceholderFill
	}
	if src.TextColor != "" {
		dst.TextColor = src.TextColor
	}
}

// toSpec converts a fully merged profile into a validated render spec.
func (p ProfileConfig) toSpec() (render.Spec, error) {
	var spec render.Spec

	if p.Width <= 0 || p.Height <= 0 {
		return spec, fmt.Errorf("canvas dimensions must be positive, got %dx%d", p.Width, p.Height)
	}
	if p.Scale != 1 && p.Scale != 2 {
		return spec, fmt.Errorf("scale must be 1 or 2, got %d", p.Scale)
	}
	if p.IconFraction <= 0 || p.IconFraction > 1 {
		return spec, fmt.Errorf("icon_fraction must be in (0, 1], got %v", p.IconFraction)
	}
	if p.IconCornerFraction <= 0 || p.IconCornerFraction > 0.5 {
		return spec, fmt.Errorf("icon_corner_fraction must be in (0, 0.5], got %v", p.IconCornerFraction)
	}
	if p.BadgeWidth <= 0 {
		return spec, fmt.Errorf("badge_width must be positive, got %d", p.BadgeWidth)
	}

	bg, err := ParseHexColor(p.Background)
	if err != nil {
		return spec, fmt.Errorf("background: %w", err)
	}
	fill, err := ParseHexColor(p.PlaceholderFill)
	if err != nil {
		return spec, fmt.Errorf("placeholder_fill: %w", err)
	}
	text, err := ParseHexColor(p.TextColor)
	if err != nil {
		return spec, fmt.Errorf("text_color: %w", err)
	}

	spec = render.Spec{
		Width:              p.Width,
		Height:             p.Height,
		Scale:              p.Scale,
		IconFraction:       p.IconFraction,
		IconCornerFraction: p.IconCornerFraction,
		IconTopOffset:      p.IconTopOffset,
		Margin:             p.Margin,
		BadgeWidth:         p.BadgeWidth,
		BadgeGap:           p.BadgeGap,
		LabelFontSize:      p.LabelFontSize,
		CTA:                p.CTA,
		CTAFontSize:        p.CTAFontSize,
		Background:         bg,
		PlaceholderFill:    fill,
		TextColor:          text,
	}
	if p.IconCenterVertical != nil {
		spec.IconCenterVertical = *p.IconCenterVertical
	}
	if p.Label != nil {
		spec.Label = *p.Label
	}
	return spec, nil
}

// ///////////////////////////////////////////////
// Badge Options
// ///////////////////////////////////////////////

// BadgeOptions maps the badge config section to provider options.
// defaultAssetDir is used when no asset_dir is configured.
func (c *Config) BadgeOptions(defaultAssetDir string) badge.Options {
	opts := badge.Options{
		AssetDir:    c.Badges.AssetDir,
		SourceOrder: c.Badges.Sources,
	}
	if opts.AssetDir == "" {
		opts.AssetDir = defaultAssetDir
	}
	if c.Badges.AppStoreURL != "" || c.Badges.GooglePlayURL != "" {
		opts.RemoteURLs = map[badge.Kind]string{
			badge.AppStore:   c.Badges.AppStoreURL,
			badge.GooglePlay: c.Badges.GooglePlayURL,
		}
	}
	if c.Badges.AppStorePattern != "" || c.Badges.GooglePlayPattern != "" {
		opts.Patterns = map[badge.Kind]string{
			badge.AppStore:   c.Badges.AppStorePattern,
			badge.GooglePlay: c.Badges.GooglePlayPattern,
		}
	}
	return opts
}

// ///////////////////////////////////////////////
// Colors
// ///////////////////////////////////////////////

// ParseHexColor parses a "#RRGGBB" hex color string into a color.NRGBA.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: must be 6 hex digits", hex)
	}
	r, err := strconv.ParseUint(hex[0:2], 16, 8)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	g, err := strconv.ParseUint(hex[2:4], 16, 8)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	b, err := strconv.ParseUint(hex[4:6], 16, 8)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
}

func boolPtr(b bool) *bool { return &b }
