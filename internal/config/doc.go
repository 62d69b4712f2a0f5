// Package config loads, validates, and normalizes the TOML configuration for
// redub: working directories, provider credentials, and the alignment engine
// tunables (window sizes, silence detection parameters, stretch tolerance).
package config
