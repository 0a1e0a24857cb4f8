// Package config loads, normalizes, and validates the TOML configuration for
// the ytlantern resolution and download service.
//
// Values come from three layers applied in order: compiled defaults, an
// optional TOML file, and environment variable overrides kept for
// compatibility with the container deployment (VIDEO_STORAGE_PATH,
// YTDLP_COOKIE_FILE, YTDLP_TIMEOUT, and friends). All path fields are
// tilde-expanded and absolute after Load returns.
package config
