// Package config loads, normalizes, and validates hlsmaker configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HLSMAKER_NTFY_TOPIC. The Config type centralizes every knob the CLI needs:
// external tool names and search directories, rendition defaults, the
// history database, logging, notifications, and metrics export.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
