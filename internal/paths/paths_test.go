package paths

import (
	"path/filepath"
	"testing"
)

func TestDataDirPaths(t *testing.T) {
	d := DataDir{Root: filepath.Join("tmp", "tilegen")}

	if got, want := d.Config(), filepath.Join("tmp", "tilegen", "config.toml"); got != want {
		t.Errorf("Config() = %q, want %q", got, want)
	}
	if got, want := d.Log(), filepath.Join("tmp", "tilegen", "tilegen.log"); got != want {
		t.Errorf("Log() = %q, want %q", got, want)
	}
	if got, want := d.Badges(), filepath.Join("tmp", "tilegen", "badges"); got != want {
		t.Errorf("Badges() = %q, want %q", got, want)
	}
	if got, want := d.FontCache(), filepath.Join("tmp", "tilegen", "fonts", ".cache"); got != want {
		t.Errorf("FontCache() = %q, want %q", got, want)
	}
}

func TestDefaultNonEmpty(t *testing.T) {
	if Default().Root == "" {
		t.Error("Default().Root is empty")
	}
}
