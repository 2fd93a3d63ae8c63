// Package main implements tilegen, which renders CTV app-install promo tiles
// from an app name and an optional storefront listing URL.
//
// One-shot mode renders a single tile and writes the PNG to disk. Serve mode
// (-listen) exposes the same pipeline over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	rootpkg "github.com/ctvtile/tilegen"
	"github.com/ctvtile/tilegen/internal/atomicfile"
	"github.com/ctvtile/tilegen/internal/badge"
	"github.com/ctvtile/tilegen/internal/config"
	"github.com/ctvtile/tilegen/internal/export"
	"github.com/ctvtile/tilegen/internal/fontres"
	"github.com/ctvtile/tilegen/internal/icon"
	"github.com/ctvtile/tilegen/internal/logger"
	"github.com/ctvtile/tilegen/internal/paths"
	"github.com/ctvtile/tilegen/internal/render"
	"github.com/ctvtile/tilegen/internal/server"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=0.1.0" ./cmd/tilegen
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically, so dev builds get a useful version string
// without needing git at runtime.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and dirty
// state embedded by the Go toolchain are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	var (
		appName     = flag.String("name", "", "App display name (required for one-shot mode)")
		listingURL  = flag.String("url", "", "Storefront listing URL to scrape the app icon from")
		profile     = flag.String("profile", server.DefaultProfile, "Render profile (e.g. sd, fhd)")
		outPath     = flag.String("out", "", "Output file path (default: <app_name>_ctv_tile.png)")
		format      = flag.String("format", "png", "Output format")
		dataDirFlag = flag.String("data-dir", "", "Data directory (default: ~/"+paths.DataDirRel+")")
		configPath  = flag.String("config", "", "Config file path (default: <data-dir>/"+paths.ConfigFile+")")
		logLevel    = flag.String("log-level", "", "Log level override (trace, debug, info, warn, error)")
		listen      = flag.String("listen", "", "Serve mode: address to listen on (e.g. :8080)")
		initConfig  = flag.Bool("init-config", false, "Write the default config file and exit")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("tilegen", resolveVersion())
		return
	}

	dataDir := paths.Default()
	if *dataDirFlag != "" {
		dataDir = paths.DataDir{Root: *dataDirFlag}
	}
	cfgPath := dataDir.Config()
	if *configPath != "" {
		cfgPath = *configPath
	}

	if *initConfig {
		if err := writeDefaultConfig(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: init config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", cfgPath)
		return
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if *logLevel != "" {
		level = *logLevel
	}

	if *listen != "" {
		if err := runServe(cfg, dataDir, *listen, level); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runOnce(cfg, dataDir, level, oneShotArgs{
		appName: *appName,
		url:     *listingURL,
		profile: *profile,
		out:     *outPath,
		format:  *format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// writeDefaultConfig writes the embedded default config, refusing to clobber
// an existing file.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomicfile.Write(path, rootpkg.DefaultConfigTOML, 0o644)
}

// ///////////////////////////////////////////////
// One-Shot Mode
// ///////////////////////////////////////////////

type oneShotArgs struct {
	appName string
	url     string
	profile string
	out     string
	format  string
}

// runOnce renders a single tile and writes it to disk.
func runOnce(cfg *config.Config, dataDir paths.DataDir, level string, args oneShotArgs) error {
	log := logger.NewStderrLogger(logger.ParseLevel(level))

	outFormat, err := export.ParseFormat(args.format)
	if err != nil {
		return err
	}
	spec, err := cfg.ResolvedSpec(args.profile)
	if err != nil {
		return err
	}

	ctx := context.Background()
	renderer := &render.Renderer{
		Icons: icon.NewResolver(log),
		Badges: badge.NewProvider(
			cfg.BadgeOptions(dataDir.Badges()), log),
		Font: fontres.Load(ctx, fontres.Config{
			File:     cfg.Font.File,
			Fallback: cfg.Font.Fallback,
			CacheDir: dataDir.FontCache(),
		}, log),
		Log: log,
	}

	tile, err := renderer.Generate(ctx, render.Request{
		AppName:    args.appName,
		ListingURL: args.url,
	}, spec)
	if err != nil {
		return err
	}

	data, err := export.Encode(tile, outFormat)
	if err != nil {
		return err
	}

	out := args.out
	if out == "" {
		out = export.Filename(tile.AppName)
	}
	if err := atomicfile.Write(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	log.Info("tile written", "path", out, "bytes", len(data),
		"width", spec.Width, "height", spec.Height)
	return nil
}

// ///////////////////////////////////////////////
// Serve Mode
// ///////////////////////////////////////////////

// runServe starts the HTTP server and blocks until SIGINT/SIGTERM.
func runServe(cfg *config.Config, dataDir paths.DataDir, addr, level string) error {
	if err := os.MkdirAll(dataDir.Root, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	log, closer, err := logger.NewLogger(dataDir.Log(), logger.ParseLevel(level), cfg.Log.MaxSizeMB)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	font := fontres.Load(ctx, fontres.Config{
		File:     cfg.Font.File,
		Fallback: cfg.Font.Fallback,
		CacheDir: dataDir.FontCache(),
	}, log)

	app := server.NewApp(cfg, font, dataDir.Badges(), log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "version", resolveVersion())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
