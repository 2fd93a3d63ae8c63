// Package server exposes tile generation over HTTP, replacing the interactive
// shell the tool is otherwise driven from.
//
// GET /tile?name=<app name>&url=<listing url>&profile=<profile> renders one
// tile and responds with the PNG bytes and a download filename. Each request
// builds its own render pipeline; nothing is cached or shared between calls
// beyond the immutable configuration.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/image/font/opentype"

	"github.com/ctvtile/tilegen/internal/badge"
	"github.com/ctvtile/tilegen/internal/config"
	"github.com/ctvtile/tilegen/internal/export"
	"github.com/ctvtile/tilegen/internal/icon"
	"github.com/ctvtile/tilegen/internal/render"
)

// DefaultProfile is used when a request names none.
const DefaultProfile = "sd"

// App holds the immutable pieces shared by all requests.
type App struct {
	cfg  *config.Config
	font *opentype.Font
	// badgeDir is the resolved default badge asset directory.
	badgeDir string
	log      *slog.Logger
}

// NewApp builds the handler state. The font is resolved once at startup; tile
// requests only ever read it.
func NewApp(cfg *config.Config, font *opentype.Font, badgeDir string, log *slog.Logger) *App {
	return &App{cfg: cfg, font: font, badgeDir: badgeDir, log: log}
}

// NewRouter returns the HTTP handler for app.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", app.Health)
	r.Get("/tile", app.Tile)

	return r
}

// Health reports liveness.
func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Tile renders one tile from query parameters and serves it as a PNG download.
func (a *App) Tile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	profile := q.Get("profile")
	if profile == "" {
		profile = DefaultProfile
	}
	spec, err := a.cfg.ResolvedSpec(profile)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_profile", err.Error())
		return
	}

	req := render.Request{
		AppName:    q.Get("name"),
		ListingURL: q.Get("url"),
	}

	renderer := &render.Renderer{
		Icons:  icon.NewResolver(a.log),
		Badges: badge.NewProvider(a.cfg.BadgeOptions(a.badgeDir), a.log),
		Font:   a.font,
		Log:    a.log,
	}

	tile, err := renderer.Generate(r.Context(), req, spec)
	if err != nil {
		if errors.Is(err, render.ErrEmptyAppName) {
			a.error(w, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
		a.error(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}

	data, err := export.Encode(tile, export.PNG)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "encode_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", export.PNG.MIMEType())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition",
		`attachment; filename="`+export.Filename(tile.AppName)+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		a.log.Debug("server: write response failed", "error", err)
	}
}

// error writes a JSON error body with the given status.
func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}
