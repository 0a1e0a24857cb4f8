package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ytlantern/internal/services"
	"ytlantern/internal/videoid"
)

// Layout maps video identities to deterministic directories under the
// storage root. Repeated requests for the same video, part, and format
// land in the same directory so completed downloads can be reused.
type Layout struct {
	root string
}

// NewLayout constructs a layout rooted at the given directory.
func NewLayout(root string) (*Layout, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrInvalidArgument, "storage", "layout", "storage root required", nil)
	}
	return &Layout{root: root}, nil
}

// Root returns the storage root directory.
func (l *Layout) Root() string {
	return l.root
}

// VideoDir returns the directory holding all artifacts for one video,
// accounting for multi-part identifiers.
func (l *Layout) VideoDir(id videoid.Identity) string {
	dir := filepath.Join(l.root, id.ID)
	if id.Part != "" {
		dir = filepath.Join(dir, "p"+id.Part)
	}
	return dir
}

// JobDir returns the directory for one download job, keyed by the
// sanitized format specification.
func (l *Layout) JobDir(id videoid.Identity, formatSpec string) string {
	return filepath.Join(l.VideoDir(id), sanitizeSegment(formatSpec))
}

// SubtitleDir returns the directory for one subtitle fetch, keyed by
// language and origin.
func (l *Layout) SubtitleDir(id videoid.Identity, language, origin string) string {
	segment := sanitizeSegment("subs-" + language + "-" + origin)
	return filepath.Join(l.VideoDir(id), segment)
}

// EnsureDir creates the directory and any missing parents.
func (l *Layout) EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIO, "storage", "ensure dir", fmt.Sprintf("create %s", dir), err)
	}
	return nil
}

// sanitizeSegment rewrites characters that are unsafe in a path segment.
// Format specifications use "+" for merge pairs, which is path-safe, but
// "/" and path traversal dots must never reach the filesystem.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return "default"
	}
	return cleaned
}
