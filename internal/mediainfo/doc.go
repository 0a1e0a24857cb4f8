// Package mediainfo turns extraction-tool JSON output into the stable
// metadata model consumed by the HTTP collaborator. It owns the single
// platform-specific retry and best-format selection.
package mediainfo
