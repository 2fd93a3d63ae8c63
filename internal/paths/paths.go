// Package paths centralizes file and directory names used across the project.
// All data directory file names are defined here as the single source of truth.
package paths

import (
	"os"
	"path/filepath"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Data directory file names.
const (
	ConfigFile   = "config.toml"
	LogFile      = "tilegen.log"
	FontCacheDir = "fonts/.cache"
	BadgeDir     = "badges"
)

// DataDirRel is the data directory name relative to $HOME.
const DataDirRel = ".tilegen"

// ///////////////////////////////////////////////
// DataDir
// ///////////////////////////////////////////////

// DataDir provides path construction methods rooted at a data directory.
type DataDir struct {
	Root string
}

// Default returns the data directory under the user's home directory.
// Falls back to the current directory when the home directory is unknown.
func Default() DataDir {
	home, err := os.UserHomeDir()
	if err != nil {
		return DataDir{Root: DataDirRel}
	}
	return DataDir{Root: filepath.Join(home, DataDirRel)}
}

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// FontCache returns the full path to the downloaded-font cache directory.
func (d DataDir) FontCache() string { return filepath.Join(d.Root, filepath.FromSlash(FontCacheDir)) }

// Badges returns the full path to the local badge asset directory.
func (d DataDir) Badges() string { return filepath.Join(d.Root, BadgeDir) }
