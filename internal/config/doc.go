// Package config loads macrokit settings.
//
// Settings are layered, lowest priority first:
//
//  1. Built-in defaults (Default)
//  2. The TOML config file, by default $XDG_CONFIG_HOME/macrokit/config.toml
//  3. MACROKIT_* environment variables, e.g. MACROKIT_LOG_LEVEL=debug
//
// A missing config file is not an error. Unknown keys in the file are.
package config
