// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/simbench/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/simbench/config.cue on macOS, %APPDATA%\simbench\config.cue
// on Windows). The package provides type-safe configuration access for the provisioning
// destination, default manifest and tolerance-rule paths, checksum and download settings,
// the run-history database location, and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
