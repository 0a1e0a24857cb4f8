// Package storage lays out the on-disk tree for downloaded media and
// subtitle artifacts and guards concurrent jobs with file leases.
package storage
