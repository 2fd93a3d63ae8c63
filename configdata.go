// Package tilegen provides embedded assets for the tile generator.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The CLI writes this file to the data directory when
// asked to initialize a fresh configuration.
package tilegen

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time. Its values mirror [internal/config.Default].
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
