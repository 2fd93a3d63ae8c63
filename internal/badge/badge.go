// Package badge supplies the two store badge images composited onto tiles.
//
// Badges come from an ordered chain of named sources: a local asset directory
// searched by glob pattern, then the vendor's canonical badge URL. The first
// source that yields a decodable image wins; if every source fails the badge
// layer is omitted from the tile. The chain is deterministic and total —
// [Provider.Get] always terminates in either a usable asset or "unavailable".
package badge

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "image/jpeg"
	_ "image/png"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/image/draw"

	"github.com/ctvtile/tilegen/internal/fetchutil"
)

// Kind identifies one of the two store badges. The set is closed.
type Kind int

const (
	AppStore Kind = iota
	GooglePlay
)

// String returns the badge's configuration key ("app_store", "google_play").
func (k Kind) String() string {
	switch k {
	case AppStore:
		return "app_store"
	case GooglePlay:
		return "google_play"
	default:
		return fmt.Sprintf("badge(%d)", int(k))
	}
}

// Kinds lists both badge kinds in composite order (App Store above Google Play).
var Kinds = []Kind{AppStore, GooglePlay}

// Canonical vendor badge URLs, used when no local asset is available.
var defaultRemoteURLs = map[Kind]string{
	AppStore:   "https://tools.applemediaservices.com/api/badges/download-on-the-app-store/black/en-us",
	GooglePlay: "https://play.google.com/intl/en_us/badges/static/images/badges/en_badge_web_generic.png",
}

// Default glob patterns for locating badge files in the asset directory.
var defaultPatterns = map[Kind]string{
	AppStore:   "app_store*.{png,jpg,jpeg}",
	GooglePlay: "google_play*.{png,jpg,jpeg}",
}

const maxBadgeBytes = 5 << 20

// ///////////////////////////////////////////////
// Sources
// ///////////////////////////////////////////////

// Source is one place a badge image may come from. Fetch returns the decoded
// image at its native size, or an error when this source cannot supply it.
type Source interface {
	Name() string
	Fetch(ctx context.Context, kind Kind) (image.Image, error)
}

// localSource reads badge files from an asset directory, matched by glob.
type localSource struct {
	dir      string
	patterns map[Kind]string
}

func (s *localSource) Name() string { return "local" }

func (s *localSource) Fetch(_ context.Context, kind Kind) (image.Image, error) {
	pattern := s.patterns[kind]
	if s.dir == "" || pattern == "" {
		return nil, fmt.Errorf("no local asset configured for %s", kind)
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(s.dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no local asset matches %q in %s", pattern, s.dir)
	}
	sort.Strings(matches)

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", matches[0], err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", matches[0], err)
	}
	return img, nil
}

// remoteSource downloads badge images from fixed vendor URLs.
type remoteSource struct {
	urls map[Kind]string
}

func (s *remoteSource) Name() string { return "remote" }

func (s *remoteSource) Fetch(ctx context.Context, kind Kind) (image.Image, error) {
	url := s.urls[kind]
	if url == "" {
		return nil, fmt.Errorf("no remote url configured for %s", kind)
	}
	data, err := fetchutil.Bytes(ctx, url, maxBadgeBytes)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode badge from %s: %w", url, err)
	}
	return img, nil
}

// ///////////////////////////////////////////////
// Provider
// ///////////////////////////////////////////////

// Options configures the badge source chain.
type Options struct {
	// AssetDir is the local badge asset directory; empty disables the local source.
	AssetDir string
	// Patterns overrides the per-kind glob patterns for the local source.
	Patterns map[Kind]string
	// RemoteURLs overrides the per-kind vendor URLs for the remote source.
	RemoteURLs map[Kind]string
	// SourceOrder names the sources to try, in order ("local", "remote").
	// Nil means local then remote; an explicit empty slice disables fetching.
	SourceOrder []string
}

// Provider resolves badge images through an ordered source chain.
type Provider struct {
	sources []Source
	log     *slog.Logger
}

// NewProvider builds a Provider from opts. Unknown source names are skipped
// with a warning so a typo in config degrades instead of crashing.
func NewProvider(opts Options, log *slog.Logger) *Provider {
	patterns := mergeOverrides(defaultPatterns, opts.Patterns)
	urls := mergeOverrides(defaultRemoteURLs, opts.RemoteURLs)
	order := opts.SourceOrder
	if order == nil {
		order = []string{"local", "remote"}
	}

	p := &Provider{log: log}
	for _, name := range order {
		switch name {
		case "local":
			p.sources = append(p.sources, &localSource{dir: opts.AssetDir, patterns: patterns})
		case "remote":
			p.sources = append(p.sources, &remoteSource{urls: urls})
		default:
			log.Warn("badge: unknown source in config, skipping", "source", name)
		}
	}
	return p
}

// Get returns the badge image for kind rescaled to displayWidth (aspect ratio
// preserved, NRGBA). The second result is false when no source could supply
// the badge; the caller omits that layer.
func (p *Provider) Get(ctx context.Context, kind Kind, displayWidth int) (*image.NRGBA, bool) {
	for _, src := range p.sources {
		img, err := src.Fetch(ctx, kind)
		if err != nil {
			p.log.Debug("badge: source miss", "kind", kind.String(), "source", src.Name(), "error", err)
			continue
		}
		p.log.Debug("badge: resolved", "kind", kind.String(), "source", src.Name())
		return scaleToWidth(img, displayWidth), true
	}
	p.log.Warn("badge: unavailable, omitting layer", "kind", kind.String())
	return nil, false
}

// mergeOverrides layers non-empty per-kind overrides onto the defaults, so
// overriding one badge kind leaves the other's default intact.
func mergeOverrides(defaults, overrides map[Kind]string) map[Kind]string {
	merged := make(map[Kind]string, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			merged[k] = v
		}
	}
	return merged
}

// scaleToWidth rescales img to the given width, preserving aspect ratio.
func scaleToWidth(img image.Image, width int) *image.NRGBA {
	b := img.Bounds()
	height := int(math.Round(float64(width) * float64(b.Dy()) / float64(b.Dx())))
	if height < 1 {
		height = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
