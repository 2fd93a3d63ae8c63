// Package icon resolves a representative app icon from a storefront listing
// URL.
//
// The pipeline: extract the app identifier from the listing URL's query
// string, fetch the listing page, scrape the first icon-CDN image URL out of
// the HTML, rewrite its size token to request a 512px variant, then download
// and decode the image. Every step fails softly: any miss, network error, or
// decode failure yields nil and the caller substitutes a placeholder.
package icon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"regexp"

	// Play icons are served as PNG, JPEG, or WebP depending on the CDN variant.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/ctvtile/tilegen/internal/fetchutil"
)

// DefaultListingURL is the canonical details-page URL template; %s receives
// the extracted app identifier.
const DefaultListingURL = "https://play.google.com/store/apps/details?id=%s"

// Response body limits.
const (
	maxPageBytes  = 4 << 20  // listing HTML
	maxImageBytes = 10 << 20 // icon payload
)

var (
	// appIDRe extracts the app identifier from a listing URL query string:
	// the value of id= up to the next & or end of string.
	appIDRe = regexp.MustCompile(`id=([^&]+)`)

	// defaultIconRe matches the first icon-CDN image URL in the listing HTML,
	// terminated at the first double quote.
	defaultIconRe = regexp.MustCompile(`https://play-lh\.googleusercontent\.com/[^"]+`)

	// sizeTokenRe matches the =s<digits> size suffix on CDN image URLs.
	sizeTokenRe = regexp.MustCompile(`=s\d+`)
)

// ExtractAppID returns the app identifier embedded in a listing URL, and
// whether one was found.
func ExtractAppID(listingURL string) (string, bool) {
	m := appIDRe.FindStringSubmatch(listingURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizeIconURL rewrites any =s<digits> size token in a CDN icon URL to
// request the 512px variant. URLs without a size token pass through unchanged.
func NormalizeIconURL(u string) string {
	return sizeTokenRe.ReplaceAllString(u, "=s512")
}

// Resolver fetches app icons from storefront listing pages.
// The zero value is not usable; construct with [NewResolver].
type Resolver struct {
	// listingURL is the details-page URL template (%s receives the app id).
	listingURL string
	// iconRe matches icon image URLs in the fetched listing HTML.
	iconRe *regexp.Regexp
	log    *slog.Logger
}

// NewResolver returns a Resolver using the canonical listing URL template and
// icon-CDN pattern.
func NewResolver(log *slog.Logger) *Resolver {
	return &Resolver{listingURL: DefaultListingURL, iconRe: defaultIconRe, log: log}
}

// NewResolverForTest returns a Resolver with an overridden listing URL
// template and icon URL pattern, so tests can point it at stub servers.
func NewResolverForTest(listingURL string, iconRe *regexp.Regexp, log *slog.Logger) *Resolver {
	return &Resolver{listingURL: listingURL, iconRe: iconRe, log: log}
}

// Resolve returns the app's icon image, or nil if it could not be retrieved
// for any reason. It never returns an error: icon loss degrades the tile to a
// placeholder, it does not fail the render.
func (r *Resolver) Resolve(ctx context.Context, listingURL string) image.Image {
	id, ok := ExtractAppID(listingURL)
	if !ok {
		r.log.Debug("icon: no app id in listing url", "url", listingURL)
		return nil
	}

	page, err := fetchutil.Bytes(ctx, fmt.Sprintf(r.listingURL, id), maxPageBytes)
	if err != nil {
		r.log.Debug("icon: listing page fetch failed", "id", id, "error", err)
		return nil
	}

	match := r.iconRe.Find(page)
	if match == nil {
		r.log.Debug("icon: no icon url in listing page", "id", id)
		return nil
	}
	iconURL := NormalizeIconURL(string(match))

	raw, err := fetchutil.Bytes(ctx, iconURL, maxImageBytes)
	if err != nil {
		r.log.Debug("icon: image fetch failed", "url", iconURL, "error", err)
		return nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		r.log.Debug("icon: image decode failed", "url", iconURL, "error", err)
		return nil
	}
	r.log.Debug("icon: resolved", "id", id, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return img
}
