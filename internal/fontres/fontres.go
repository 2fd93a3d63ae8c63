// Package fontres resolves the typeface used for tile text.
//
// Resolution chain:
//  1. Local font file from config (TTF/OTF, or WOFF2 converted to SFNT)
//  2. Google Fonts download from a "google:FAMILY:WEIGHT" spec, cached on disk
//  3. The embedded Go Regular face
//
// The chain cannot come up empty: tier 3 is compiled into the binary, so text
// always renders. A missing or broken configured font changes the typeface,
// never the outcome.
package fontres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	tdfont "github.com/tdewolff/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ctvtile/tilegen/internal/fetchutil"
)

// Config selects the font sources to try ahead of the built-in face.
type Config struct {
	// File is a local font file path (TTF, OTF, or WOFF2). Optional.
	File string
	// Fallback is a Google Fonts spec like "google:Inter:800". Optional.
	Fallback string
	// CacheDir holds downloaded fonts so they are not re-fetched per run.
	CacheDir string
}

// fontURLRe extracts the font file URL from the Google Fonts CSS response.
// Matches: url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2)
var fontURLRe = regexp.MustCompile(`url\((https://fonts\.gstatic\.com/[^)]+)\)`)

// ///////////////////////////////////////////////
// Resolution Chain
// ///////////////////////////////////////////////

// Load resolves a parsed font through the configured chain. It never fails:
// the embedded Go Regular face is the terminal fallback.
func Load(ctx context.Context, cfg Config, log *slog.Logger) *opentype.Font {
	if cfg.File != "" {
		if f, err := loadFile(cfg.File); err == nil {
			log.Debug("font: using local file", "path", cfg.File)
			return f
		} else {
			log.Debug("font: local file unusable", "path", cfg.File, "error", err)
		}
	}

	if cfg.Fallback != "" {
		if f, err := loadGoogle(ctx, cfg.Fallback, cfg.CacheDir); err == nil {
			log.Debug("font: using google fonts", "spec", cfg.Fallback)
			return f
		} else {
			log.Debug("font: google fonts unusable", "spec", cfg.Fallback, "error", err)
		}
	}

	// Embedded face; goregular.TTF always parses.
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("fontres: parse embedded font: %v", err))
	}
	log.Debug("font: using embedded Go Regular")
	return f
}

// NewFace creates a rendering face at the given point size (72 DPI).
func NewFace(f *opentype.Font, sizePts float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePts,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// loadFile reads and parses a local font file, converting WOFF2 if needed.
func loadFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err = maybeConvertWOFF2(path, data)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

// ///////////////////////////////////////////////
// Google Fonts
// ///////////////////////////////////////////////

// ParseGoogleFontSpec parses a "google:Family:Weight" spec into its parts.
// Returns family, weight, and whether the spec is valid.
func ParseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// loadGoogle downloads and parses a font from Google Fonts, caching the
// SFNT-converted bytes under cacheDir.
func loadGoogle(ctx context.Context, spec, cacheDir string) (*opentype.Font, error) {
	data, err := FetchGoogleFont(ctx, spec, cacheDir)
	if err != nil {
		return nil, err
	}
	return opentype.Parse(data)
}

// FetchGoogleFont downloads a font from Google Fonts, caching the result.
// The cacheDir is created if it doesn't exist. Returns the raw font bytes in
// SFNT (TTF/OTF) format, converting from WOFF2 if necessary.
func FetchGoogleFont(ctx context.Context, spec, cacheDir string) ([]byte, error) {
	family, weight, ok := ParseGoogleFontSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	// Check cache first
	cacheFile := filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", family, weight))
	if data, err := os.ReadFile(cacheFile); err == nil {
		return data, nil
	}

	cssURL := fmt.Sprintf("https://fonts.googleapis.com/css2?family=%s:wght@%s",
		url.QueryEscape(family), weight)

	// Google returns WOFF2 URLs for modern User-Agents (we have a converter).
	cssBody, err := fetchutil.Bytes(ctx, cssURL, 1<<20,
		"User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	if err != nil {
		return nil, fmt.Errorf("fetching CSS from Google Fonts: %w", err)
	}

	matches := fontURLRe.FindSubmatch(cssBody)
	if matches == nil {
		return nil, fmt.Errorf("no font URL found in Google Fonts CSS response for %s wght@%s", family, weight)
	}
	fontURL := string(matches[1])

	fontData, err := fetchutil.Bytes(ctx, fontURL, 10<<20)
	if err != nil {
		return nil, fmt.Errorf("downloading font file: %w", err)
	}

	fontData, err = maybeConvertWOFF2(fontURL, fontData)
	if err != nil {
		return nil, err
	}

	// Cache the converted font; failure to cache is non-fatal.
	if err := os.MkdirAll(cacheDir, 0o755); err == nil {
		_ = os.WriteFile(cacheFile, fontData, 0o644)
	}
	return fontData, nil
}

// ///////////////////////////////////////////////
// WOFF2
// ///////////////////////////////////////////////

// maybeConvertWOFF2 converts WOFF2 font data to SFNT format if needed.
func maybeConvertWOFF2(name string, data []byte) ([]byte, error) {
	if isWOFF2(name, data) {
		sfnt, err := tdfont.ToSFNT(data)
		if err != nil {
			return nil, fmt.Errorf("convert woff2 to sfnt: %w", err)
		}
		return sfnt, nil
	}
	return data, nil
}

// isWOFF2 checks whether a font file is WOFF2 by name extension or magic bytes.
// WOFF2 magic: 0x774F4632 ("wOF2")
func isWOFF2(name string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(name), ".woff2") {
		return true
	}
	if len(data) >= 4 && data[0] == 'w' && data[1] == 'O' && data[2] == 'F' && data[3] == '2' {
		return true
	}
	return false
}
