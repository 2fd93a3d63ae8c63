// Package badge tests cover the source chain ordering, local glob matching,
// remote fallback, aspect-preserving rescale, and the unavailable path.
package badge

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

// writePNG writes a solid w x h PNG file.
func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestGetFromLocalSource(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "app_store_black.png"), 200, 60, color.NRGBA{A: 255})

	p := NewProvider(Options{AssetDir: dir, SourceOrder: []string{"local"}}, testLogger())
	img, ok := p.Get(context.Background(), AppStore, 90)
	if !ok {
		t.Fatal("Get = unavailable, want badge")
	}
	b := img.Bounds()
	if b.Dx() != 90 {
		t.Errorf("width = %d, want 90", b.Dx())
	}
	// 200x60 scaled to width 90 keeps the 10:3 aspect ratio.
	if b.Dy() != 27 {
		t.Errorf("height = %d, want 27", b.Dy())
	}
}

func TestGetFromRemoteSource(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 120, 40))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	defer ts.Close()

	p := NewProvider(Options{
		SourceOrder: []string{"remote"},
		RemoteURLs:  map[Kind]string{GooglePlay: ts.URL + "/badge.png"},
	}, testLogger())

	img2, ok := p.Get(context.Background(), GooglePlay, 60)
	if !ok {
		t.Fatal("Get = unavailable, want badge")
	}
	if got := img2.Bounds().Dx(); got != 60 {
		t.Errorf("width = %d, want 60", got)
	}
}

func TestGetLocalPreferredOverRemote(t *testing.T) {
	dir := t.TempDir()
	// Local asset is square; the remote stub would be rejected by the test if hit.
	writePNG(t, filepath.Join(dir, "app_store.png"), 100, 100, color.NRGBA{R: 255, A: 255})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote source was consulted despite a local asset")
	}))
	defer ts.Close()

	p := NewProvider(Options{
		AssetDir:   dir,
		RemoteURLs: map[Kind]string{AppStore: ts.URL},
	}, testLogger())

	img, ok := p.Get(context.Background(), AppStore, 50)
	if !ok {
		t.Fatal("Get = unavailable, want badge")
	}
	if b := img.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
		t.Errorf("size = %dx%d, want 50x50 (square local asset)", b.Dx(), b.Dy())
	}
}

func TestGetUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	p := NewProvider(Options{
		AssetDir: t.TempDir(), // empty
		RemoteURLs: map[Kind]string{
			AppStore:   ts.URL + "/a.png",
			GooglePlay: ts.URL + "/g.png",
		},
	}, testLogger())

	if _, ok := p.Get(context.Background(), AppStore, 90); ok {
		t.Error("Get = available, want unavailable when every source fails")
	}
}

func TestGetNoSources(t *testing.T) {
	p := NewProvider(Options{SourceOrder: []string{}}, testLogger())
	if _, ok := p.Get(context.Background(), GooglePlay, 90); ok {
		t.Error("Get = available with an empty source chain")
	}
}

func TestUnknownSourceSkipped(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "google_play.png"), 80, 24, color.NRGBA{A: 255})

	p := NewProvider(Options{
		AssetDir:    dir,
		SourceOrder: []string{"s3", "local"},
	}, testLogger())

	if _, ok := p.Get(context.Background(), GooglePlay, 40); !ok {
		t.Error("Get = unavailable, want badge via the valid source after the unknown one")
	}
}

func TestKindString(t *testing.T) {
	if AppStore.String() != "app_store" || GooglePlay.String() != "google_play" {
		t.Errorf("Kind strings = %q, %q", AppStore.String(), GooglePlay.String())
	}
}
