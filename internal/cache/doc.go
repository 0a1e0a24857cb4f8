// Package cache persists parse results in SQLite so repeated requests for
// the same URL skip the extraction tool while the entry is fresh.
package cache
