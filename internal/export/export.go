// Package export encodes finished tiles to a downloadable byte stream.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"strings"

	"github.com/ctvtile/tilegen/internal/render"
)

// Format is a supported raster output format.
type Format int

// PNG is the only wired format: tiles must survive encoding losslessly.
const PNG Format = iota

// ErrUnsupportedFormat is returned for formats outside the supported set,
// before any encode work is attempted.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat maps a format name (or file extension) to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return PNG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// MIMEType returns the media type for a format.
func (f Format) MIMEType() string { return "image/png" }

// Encode serializes a tile in the given format. Pure and deterministic.
func Encode(t *render.Tile, format Format) ([]byte, error) {
	if format != PNG {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, int(format))
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, t.Image); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the default download filename for an app name:
// lowercased, spaces replaced with underscores, "_ctv_tile.png" suffix.
func Filename(appName string) string {
	name := strings.ToLower(strings.TrimSpace(appName))
	name = strings.Join(strings.Fields(name), "_")
	return name + "_ctv_tile.png"
}
