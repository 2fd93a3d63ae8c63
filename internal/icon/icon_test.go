// Package icon tests cover app id extraction, icon URL size-token rewriting,
// and the full soft-fail resolve pipeline against stub HTTP servers.
package icon

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// ///////////////////////////////////////////////
// App ID Extraction
// ///////////////////////////////////////////////

func TestExtractAppID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://play.google.com/store/apps/details?id=com.example.app", "com.example.app", true},
		{"https://play.google.com/store/apps/details?id=com.example&hl=en", "com.example", true},
		{"https://example.com/page?foo=1&id=x&bar=2", "x", true},
		{"https://play.google.com/store/apps/details", "", false},
		{"not a url at all", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		id, ok := ExtractAppID(tt.url)
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("ExtractAppID(%q) = (%q, %v), want (%q, %v)", tt.url, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

// ///////////////////////////////////////////////
// Icon URL Normalization
// ///////////////////////////////////////////////

func TestNormalizeIconURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://play-lh.googleusercontent.com/abc=s64", "https://play-lh.googleusercontent.com/abc=s512"},
		{"https://play-lh.googleusercontent.com/abc=s180-rw", "https://play-lh.googleusercontent.com/abc=s512-rw"},
		{"https://play-lh.googleusercontent.com/abc", "https://play-lh.googleusercontent.com/abc"},
		{"https://play-lh.googleusercontent.com/a=s1/b=s2", "https://play-lh.googleusercontent.com/a=s512/b=s512"},
	}
	for _, tt := range tests {
		if got := NormalizeIconURL(tt.in); got != tt.want {
			t.Errorf("NormalizeIconURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Resolve Pipeline
// ///////////////////////////////////////////////

// pngBytes encodes a solid w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// newStubResolver starts a stub storefront: /details serves HTML referencing
// the stub's own /icon.png.
func newStubResolver(t *testing.T, iconStatus int, iconBody []byte) (*Resolver, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	mux.HandleFunc("/details", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><img src="%s/icon.png?v=1"></html>`, ts.URL)
	})
	mux.HandleFunc("/icon.png", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(iconStatus)
		_, _ = w.Write(iconBody)
	})

	iconRe := regexp.MustCompile(regexp.QuoteMeta(ts.URL) + `/icon[^"]*`)
	return NewResolverForTest(ts.URL+"/details?id=%s", iconRe, testLogger()), ts
}

func TestResolve(t *testing.T) {
	r, _ := newStubResolver(t, http.StatusOK, pngBytes(t, 16, 16))

	img := r.Resolve(context.Background(), "https://play.google.com/store/apps/details?id=com.example")
	if img == nil {
		t.Fatal("Resolve returned nil, want image")
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("icon size = %dx%d, want 16x16", b.Dx(), b.Dy())
	}
}

func TestResolveNoAppID(t *testing.T) {
	r, _ := newStubResolver(t, http.StatusOK, pngBytes(t, 16, 16))
	if img := r.Resolve(context.Background(), "https://play.google.com/store/apps/details"); img != nil {
		t.Error("Resolve returned an image for a URL without an app id")
	}
}

func TestResolveListingPageFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	r := NewResolverForTest(ts.URL+"/details?id=%s", defaultIconRe, testLogger())
	if img := r.Resolve(context.Background(), "x?id=com.example"); img != nil {
		t.Error("Resolve returned an image despite a listing page failure")
	}
}

func TestResolveNoIconInPage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>no icons here</html>`)
	}))
	defer ts.Close()

	r := NewResolverForTest(ts.URL+"/details?id=%s", defaultIconRe, testLogger())
	if img := r.Resolve(context.Background(), "x?id=com.example"); img != nil {
		t.Error("Resolve returned an image despite no icon URL in the page")
	}
}

func TestResolveIconDecodeFailure(t *testing.T) {
	r, _ := newStubResolver(t, http.StatusOK, []byte("this is not an image"))
	if img := r.Resolve(context.Background(), "x?id=com.example"); img != nil {
		t.Error("Resolve returned an image from undecodable bytes")
	}
}

func TestResolveIconFetchFailure(t *testing.T) {
	r, _ := newStubResolver(t, http.StatusNotFound, nil)
	if img := r.Resolve(context.Background(), "x?id=com.example"); img != nil {
		t.Error("Resolve returned an image despite a 404 icon fetch")
	}
}
