// SPDX-License-Identifier: MPL-2.0

// Package config loads the cauldron user configuration with Viper, using CUE
// as the file format.
//
// The file is config.cue in the platform config directory
// ($XDG_CONFIG_HOME/cauldron on Linux, ~/Library/Application Support/cauldron
// on macOS, %APPDATA%\cauldron on Windows), or the path given with --config.
// It is validated against the embedded #Config schema before being merged
// over the defaults. CAULDRON_<SECTION>_<KEY> environment variables override
// both, e.g. CAULDRON_STORE_URL.
package config
