// Package config loads, normalizes, and validates latest-sender configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, parses human-readable check periods such as
// "2d 3h", and honours the LATEST_SENDER_WEBHOOK_URL fallback for backups
// without a webhook. A configuration that fails any of these steps is rejected
// as a whole before any backup is processed.
//
// Always obtain settings through this package so downstream code receives
// parsed durations, canonical log formats, and clear validation errors.
package config
