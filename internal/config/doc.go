// Package config loads, normalizes, and validates subrelay configuration data.
//
// It supplies repository defaults (including the stock target language table),
// expands user paths (including tilde shortcuts), reads TOML files, loads an
// optional .env file, and honours environment fallbacks such as
// SUBRELAY_LLM_API_KEY and OPENROUTER_API_KEY.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
