// Package config loads, validates, and defaults the TOML configuration for
// skylapse.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/skylapse/config.toml, then ./skylapse.toml, falling back to
// built-in defaults when no file exists. All path fields are expanded to
// absolute paths during load so downstream code never handles "~".
package config
