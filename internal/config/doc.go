// Package config loads, normalizes, and validates keeper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// KEEPER_LIBRARY_DB. The Config type centralizes every knob the CLI and
// pipeline need: the Navidrome database location, the duplicate feed path,
// the preferred-extension allow-list, and resolver/run toggles.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extensions, and clear validation errors.
package config
