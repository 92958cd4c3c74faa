// Package config loads and merges canon configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (AGENT_TYPE, MODEL_NAME, CANON_STANDARDS_DIR, etc.)
//  3. Config file (--config, ./.canon.yaml, or $XDG_CONFIG_HOME/canon/config.yaml)
//  4. Built-in defaults
//
// The API key is never part of Config; the CLI reads it from the environment
// at the point of use.
package config
