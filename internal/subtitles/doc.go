// Package subtitles lists available subtitle tracks and fetches individual
// tracks, converting container formats on request with a fallback to the
// tool's native output.
package subtitles
