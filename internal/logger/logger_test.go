// Package logger tests cover record formatting, level filtering and parsing,
// attribute handling, and group prefixes.
package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func record(level slog.Level, msg string, attrs ...slog.Attr) slog.Record {
	r := slog.NewRecord(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), level, msg, 0)
	r.AddAttrs(attrs...)
	return r
}

func TestHandleFormat(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelDebug)

	if err := h.Handle(context.Background(), record(LevelInfo, "tile written", slog.String("path", "a.png"), slog.Int("bytes", 42))); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got := strings.TrimRight(buf.String(), "\r\n")
	want := "2026-03-14T09:26:53.000Z [INFO] tile written | path=a.png, bytes=42"
	if got != want {
		t.Errorf("formatted record =\n  %q\nwant\n  %q", got, want)
	}
}

func TestHandleNoAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelDebug)
	if err := h.Handle(context.Background(), record(LevelWarn, "badge unavailable")); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if strings.Contains(buf.String(), "|") {
		t.Errorf("record without attrs contains separator: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN]") {
		t.Errorf("missing level tag: %q", buf.String())
	}
}

func TestEnabled(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, LevelWarn)
	if h.Enabled(context.Background(), LevelDebug) {
		t.Error("debug enabled at warn threshold")
	}
	if !h.Enabled(context.Background(), LevelError) {
		t.Error("error disabled at warn threshold")
	}
}

func TestLevelNames(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace, "TRACE"},
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LevelFail, "FAIL"},
	}
	for _, tt := range tests {
		if got := levelName(tt.level); got != tt.want {
			t.Errorf("levelName(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"trace", LevelTrace},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"fail", LevelFail},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelDebug).WithAttrs([]slog.Attr{slog.String("profile", "sd")})
	if err := h.Handle(context.Background(), record(LevelInfo, "render", slog.String("name", "app"))); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "profile=sd") || !strings.Contains(got, "name=app") {
		t.Errorf("missing attrs: %q", got)
	}
	if strings.Index(got, "profile=sd") > strings.Index(got, "name=app") {
		t.Errorf("pre-applied attrs should come first: %q", got)
	}
}

func TestWithGroup(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, LevelDebug).WithGroup("badge")
	if err := h.Handle(context.Background(), record(LevelInfo, "miss", slog.String("kind", "app_store"))); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(buf.String(), "badge.kind=app_store") {
		t.Errorf("missing group prefix: %q", buf.String())
	}
}

func TestLoggerEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewHandler(&buf, LevelInfo))
	log.Debug("hidden")
	log.Info("shown")
	Trace(log, "also hidden")
	Fail(log, "fatal thing")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-threshold records written: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "[FAIL] fatal thing") {
		t.Errorf("expected records missing: %q", out)
	}
}
