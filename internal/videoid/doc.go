// Package videoid classifies raw video URLs into platform-tagged canonical
// identities consumed by every downstream component as the addressing key.
package videoid
