package mediainfo

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"ytlantern/internal/videoid"
)

// StreamKind partitions format descriptors into audio and video sets.
type StreamKind string

const (
	StreamAudio StreamKind = "audio"
	StreamVideo StreamKind = "video"
)

// FormatDescriptor is the normalized view of one selectable stream the tool
// reported. Immutable after construction.
type FormatDescriptor struct {
	ID          string     `json:"format_id"`
	Container   string     `json:"ext"`
	Kind        StreamKind `json:"kind"`
	Height      int        `json:"height,omitempty"`
	BitrateKbps float64    `json:"bitrate_kbps,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
	SizeApprox  bool       `json:"size_approx"`
	Quality     string     `json:"quality"`
	Standard    string     `json:"standard"`
	Display     string     `json:"display"`
}

// Empty reports whether the descriptor is the zero placeholder used when a
// stream bucket has no candidates.
func (f FormatDescriptor) Empty() bool {
	return f.ID == ""
}

// SizeDisplay renders the reported size for humans, with a tilde marking
// tool-estimated values.
func (f FormatDescriptor) SizeDisplay() string {
	if f.SizeBytes <= 0 {
		return "unknown"
	}
	rendered := humanize.IBytes(uint64(f.SizeBytes))
	if f.SizeApprox {
		return "~" + rendered
	}
	return rendered
}

// ParseResult is the complete answer to one parse request. It is built once
// and never mutated; callers may cache it keyed by the source URL.
type ParseResult struct {
	Identity           videoid.Identity   `json:"-"`
	Platform           string             `json:"platform"`
	VideoID            string             `json:"video_id"`
	Part               string             `json:"part,omitempty"`
	Title              string             `json:"title"`
	Thumbnail          string             `json:"thumbnail"`
	DurationSeconds    float64            `json:"duration"`
	Uploader           string             `json:"uploader"`
	ViewCount          int64              `json:"view_count"`
	UploadDate         string             `json:"upload_date"`
	Description        string             `json:"description"`
	BestAudio          FormatDescriptor   `json:"best_audio"`
	BestVideo          FormatDescriptor   `json:"best_video"`
	AvailableAudio     []FormatDescriptor `json:"available_audio"`
	AvailableVideo     []FormatDescriptor `json:"available_video"`
	AvailableSubtitles []string           `json:"available_subtitles"`
}

// normalizeUploadDate converts the tool's compact YYYYMMDD form into RFC 3339.
// Unrecognized values pass through unchanged.
func normalizeUploadDate(raw string) string {
	if len(raw) != 8 {
		return raw
	}
	parsed, err := time.Parse("20060102", raw)
	if err != nil {
		return raw
	}
	return parsed.Format(time.RFC3339)
}

// truncateDescription bounds the description field so one verbose uploader
// cannot inflate every parse response.
const maxDescriptionLength = 500

func truncateDescription(desc string) string {
	if len(desc) <= maxDescriptionLength {
		return desc
	}
	runes := []rune(desc)
	if len(runes) <= maxDescriptionLength {
		return desc
	}
	return string(runes[:maxDescriptionLength])
}

// DurationDisplay renders the duration as h:mm:ss or m:ss.
func (p ParseResult) DurationDisplay() string {
	total := int(p.DurationSeconds)
	if total <= 0 {
		return "0:00"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
