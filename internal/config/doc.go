// Package config loads, normalizes, and validates sponsorcut configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment overrides such as SPONSORCUT_LIBRARY_DIR. Always obtain settings
// through this package so downstream code receives expanded paths, canonical
// log formats, and clear validation errors.
package config
