// Package render orchestrates tile generation: canvas allocation, layer
// placement (icon, label, badges, call-to-action), and the final supersample
// downscale.
//
// The pipeline is a fixed linear pass with no retries. Optional layers that
// cannot be produced are omitted; after input validation nothing in the
// pipeline can fail a render.
package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ctvtile/tilegen/internal/badge"
	"github.com/ctvtile/tilegen/internal/compose"
	"github.com/ctvtile/tilegen/internal/fontres"
)

// ErrEmptyAppName is returned when a request carries no app name. It is the
// only pre-render validation failure.
var ErrEmptyAppName = errors.New("app name must not be empty")

// Request is one tile generation request.
type Request struct {
	// AppName is the app's display name. Required.
	AppName string
	// ListingURL optionally points at the app's storefront page; when set, an
	// icon is scraped from it. A missing or unusable URL degrades to the
	// placeholder icon.
	ListingURL string
}

// Spec is the layout configuration for one tile profile. All pixel fields are
// in published (pre-supersample) units; the renderer multiplies by Scale
// internally. Specs are immutable at render time.
type Spec struct {
	// Width and Height are the published canvas dimensions (always 16:9 in
	// the shipped profiles).
	Width  int
	Height int
	// Scale is the supersample factor (1 or 2). Rendering happens at
	// Scale x the published size and is downsampled for antialiasing.
	Scale int

	// IconFraction sizes the square icon slot as a fraction of canvas height.
	IconFraction float64
	// IconCornerFraction is the rounded-corner radius as a fraction of the
	// icon slot size.
	IconCornerFraction float64
	// IconCenterVertical centers the icon slot vertically; otherwise the slot
	// top sits at IconTopOffset.
	IconCenterVertical bool
	// IconTopOffset is the icon slot's top edge when not vertically centered.
	IconTopOffset int

	// Margin is the left/right canvas inset for the icon and badge columns.
	Margin int

	// BadgeWidth is the display width of each store badge.
	BadgeWidth int
	// BadgeGap is the vertical gap between the two stacked badges.
	BadgeGap int

	// Label draws the uppercased app name centered under the icon slot.
	Label bool
	// LabelFontSize is the label's point size at 72 DPI.
	LabelFontSize float64

	// CTA is an optional call-to-action caption drawn under the badge column;
	// empty disables it.
	CTA string
	// CTAFontSize is the caption's point size at 72 DPI.
	CTAFontSize float64

	// Background fills the canvas.
	Background color.NRGBA
	// PlaceholderFill colors the rounded-rect placeholder used when no icon
	// resolves.
	PlaceholderFill color.NRGBA
	// TextColor colors the label and caption.
	TextColor color.NRGBA
}

// Tile is a finished render: the published-size image plus the request's app
// name (used for the download filename). Immutable once produced.
type Tile struct {
	AppName string
	Image   *image.NRGBA
}

// ///////////////////////////////////////////////
// Collaborator Interfaces
// ///////////////////////////////////////////////

// IconResolver retrieves an app icon from a listing URL, or nil.
type IconResolver interface {
	Resolve(ctx context.Context, listingURL string) image.Image
}

// BadgeProvider supplies a store badge at a display width, or reports it
// unavailable.
type BadgeProvider interface {
	Get(ctx context.Context, kind badge.Kind, displayWidth int) (*image.NRGBA, bool)
}

// ///////////////////////////////////////////////
// Renderer
// ///////////////////////////////////////////////

// Renderer generates tiles. Collaborators are injected so the pipeline is a
// pure function of (request, spec, collaborators) and tests run without a
// network or a font file.
type Renderer struct {
	// Icons resolves app icons; nil disables icon fetching (placeholder only).
	Icons IconResolver
	// Badges supplies store badges; nil omits both badge layers.
	Badges BadgeProvider
	// Font renders the label and caption; nil omits both text layers.
	Font *opentype.Font
	Log  *slog.Logger
}

// Generate runs the tile pipeline. The only error conditions are an empty app
// name and an invalid spec; every degradable failure inside the pipeline is
// absorbed by the responsible component.
func (r *Renderer) Generate(ctx context.Context, req Request, spec Spec) (*Tile, error) {
	name := strings.TrimSpace(req.AppName)
	if name == "" {
		return nil, ErrEmptyAppName
	}

	s := spec.Scale
	if s < 1 {
		s = 1
	}
	w, h := spec.Width*s, spec.Height*s

	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(spec.Background), image.Point{}, draw.Src)

	// Icon slot (left side).
	iconSize := int(math.Round(float64(h) * spec.IconFraction))
	iconX := spec.Margin * s
	iconY := spec.IconTopOffset * s
	if spec.IconCenterVertical {
		iconY = (h - iconSize) / 2
	}
	iconLayer := r.iconLayer(ctx, req.ListingURL, iconSize, spec)
	draw.Draw(canvas, image.Rect(iconX, iconY, iconX+iconSize, iconY+iconSize),
		iconLayer, image.Point{}, draw.Over)

	// App name label, centered under the icon slot.
	if spec.Label {
		text := strings.ToUpper(name)
		size := spec.LabelFontSize * float64(s)
		if textW, ok := r.measure(text, size); ok {
			x := iconX + (iconSize-textW)/2
			baseline := iconY + iconSize + int(math.Round(size*1.4))
			r.drawText(canvas, text, size, x, baseline, spec.TextColor)
		}
	}

	// Badge column (right side), stacked and vertically centered. Badges are
	// placed independently of the icon and label outcomes.
	badgeW := spec.BadgeWidth * s
	badgeX := w - badgeW - spec.Margin*s
	r.drawBadges(ctx, canvas, badgeX, badgeW, spec.BadgeGap*s, h)

	// Call-to-action caption under the badge column, near the bottom.
	if spec.CTA != "" {
		size := spec.CTAFontSize * float64(s)
		if textW, ok := r.measure(spec.CTA, size); ok {
			x := badgeX + (badgeW-textW)/2
			baseline := h - int(math.Round(size))
			r.drawText(canvas, spec.CTA, size, x, baseline, spec.TextColor)
		}
	}

	// Downsample to the published size; this is the antialiasing pass.
	out := canvas
	if s > 1 {
		out = image.NewNRGBA(image.Rect(0, 0, spec.Width, spec.Height))
		draw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	}

	return &Tile{AppName: name, Image: out}, nil
}

// iconLayer resolves and masks the app icon, or builds the placeholder.
func (r *Renderer) iconLayer(ctx context.Context, listingURL string, size int, spec Spec) *image.NRGBA {
	if r.Icons != nil && listingURL != "" {
		if src := r.Icons.Resolve(ctx, listingURL); src != nil {
			return compose.RoundedIcon(src, size, spec.IconCornerFraction)
		}
	}
	return compose.PlaceholderIcon(size, spec.IconCornerFraction, spec.PlaceholderFill)
}

// drawBadges fetches both badges and composites whichever are available as a
// vertically centered column at x.
func (r *Renderer) drawBadges(ctx context.Context, canvas *image.NRGBA, x, width, gap, canvasH int) {
	if r.Badges == nil {
		return
	}
	var layers []*image.NRGBA
	for _, kind := range badge.Kinds {
		if b, ok := r.Badges.Get(ctx, kind, width); ok {
			layers = append(layers, b)
		}
	}
	if len(layers) == 0 {
		return
	}

	total := gap * (len(layers) - 1)
	for _, b := range layers {
		total += b.Bounds().Dy()
	}
	y := (canvasH - total) / 2
	for _, b := range layers {
		bh := b.Bounds().Dy()
		draw.Draw(canvas, image.Rect(x, y, x+width, y+bh), b, image.Point{}, draw.Over)
		y += bh + gap
	}
}

// measure returns the advance width of text at the given point size, or
// ok=false when no usable face exists (text layer is then omitted).
func (r *Renderer) measure(text string, sizePts float64) (int, bool) {
	face, err := r.face(sizePts)
	if err != nil {
		return 0, false
	}
	defer face.Close()
	return font.MeasureString(face, text).Ceil(), true
}

// drawText draws text with its baseline at (x, baseline).
func (r *Renderer) drawText(dst *image.NRGBA, text string, sizePts float64, x, baseline int, c color.NRGBA) {
	face, err := r.face(sizePts)
	if err != nil {
		return
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// face creates a rendering face at sizePts, or an error when no font is set.
func (r *Renderer) face(sizePts float64) (font.Face, error) {
	if r.Font == nil {
		if r.Log != nil {
			r.Log.Debug("render: no font available, omitting text layer")
		}
		return nil, errors.New("no font")
	}
	face, err := fontres.NewFace(r.Font, sizePts)
	if err != nil {
		if r.Log != nil {
			r.Log.Debug("render: create face failed", "error", err)
		}
		return nil, err
	}
	return face, nil
}
