// Package services defines shared utilities consumed by the resolution and
// download components and their external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and video IDs for
//     logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the categories surfaced at the API boundary.
//
// Use these helpers when wiring new component logic so operational behaviour
// (error handling, observability) stays uniform across the service.
package services
