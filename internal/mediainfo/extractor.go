package mediainfo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ytlantern/internal/logging"
	"ytlantern/internal/quality"
	"ytlantern/internal/services"
	"ytlantern/internal/videoid"
)

// InfoClient is the slice of the extraction tool the extractor needs.
type InfoClient interface {
	ExtractInfo(ctx context.Context, url string) ([]byte, error)
}

// SubtitleLister reports available subtitle identifiers for a URL. Listing is
// best-effort metadata, so implementations return an empty slice on failure
// rather than an error.
type SubtitleLister interface {
	List(ctx context.Context, url string) []string
}

// Option configures the extractor.
type Option func(*Extractor)

// WithSubtitleLister attaches a subtitle lister whose result is merged into
// every parse response.
func WithSubtitleLister(lister SubtitleLister) Option {
	return func(e *Extractor) {
		e.subs = lister
	}
}

// WithLogger overrides the extractor's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor resolves a URL into a ParseResult by driving the extraction tool.
type Extractor struct {
	tool   InfoClient
	subs   SubtitleLister
	logger *slog.Logger
}

// NewExtractor constructs an extractor around the given tool client.
func NewExtractor(tool InfoClient, opts ...Option) *Extractor {
	e := &Extractor{
		tool:   tool,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse resolves the URL, invokes the tool, and normalizes its JSON output.
// A failed first attempt against a partless bilibili URL is retried exactly
// once with the part forced to 1; any other failure is terminal.
func (e *Extractor) Parse(ctx context.Context, rawURL string) (*ParseResult, error) {
	identity, err := videoid.Resolve(rawURL)
	if err != nil {
		return nil, err
	}

	canonical := identity.CanonicalURL()
	payload, err := e.tool.ExtractInfo(ctx, canonical)
	if err != nil && identity.Platform == videoid.PlatformBilibili && identity.Part == "" {
		retried := identity.WithPart("1")
		e.logger.Info("retrying extraction with part 1",
			logging.String("video_id", identity.ID),
			logging.Error(err),
		)
		payload, err = e.tool.ExtractInfo(ctx, retried.CanonicalURL())
		if err == nil {
			identity = retried
		}
	}
	if err != nil {
		if errors.Is(err, services.ErrTimeout) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrExternalTool, "mediainfo", "extract", "extraction tool failed", err)
	}

	var bag map[string]any
	if jsonErr := json.Unmarshal(payload, &bag); jsonErr != nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "mediainfo", "decode", "tool output is not valid JSON", jsonErr)
	}

	result := e.buildResult(identity, bag)

	// Subtitle availability is merged in last, using the original canonical
	// URL rather than the retried one, and degrades to an empty list.
	if e.subs != nil {
		result.AvailableSubtitles = e.subs.List(ctx, canonical)
	}
	if result.AvailableSubtitles == nil {
		result.AvailableSubtitles = []string{}
	}

	return result, nil
}

func (e *Extractor) buildResult(identity videoid.Identity, bag map[string]any) *ParseResult {
	result := &ParseResult{
		Identity:        identity,
		Platform:        string(identity.Platform),
		VideoID:         identity.ID,
		Part:            identity.Part,
		Title:           stringField(bag, "title"),
		Thumbnail:       stringField(bag, "thumbnail"),
		DurationSeconds: floatField(bag, "duration"),
		Uploader:        stringField(bag, "uploader"),
		ViewCount:       int64(floatField(bag, "view_count")),
		UploadDate:      normalizeUploadDate(stringField(bag, "upload_date")),
		Description:     truncateDescription(stringField(bag, "description")),
		AvailableAudio:  []FormatDescriptor{},
		AvailableVideo:  []FormatDescriptor{},
	}

	rawFormats, _ := bag["formats"].([]any)
	for _, raw := range rawFormats {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		descriptor, kind, ok := normalizeFormat(entry)
		if !ok {
			continue
		}
		switch kind {
		case StreamAudio:
			result.AvailableAudio = append(result.AvailableAudio, descriptor)
			// Strict comparison keeps the first-seen entry on ties.
			if result.BestAudio.Empty() || descriptor.BitrateKbps > result.BestAudio.BitrateKbps {
				result.BestAudio = descriptor
			}
		case StreamVideo:
			result.AvailableVideo = append(result.AvailableVideo, descriptor)
			if result.BestVideo.Empty() || descriptor.BitrateKbps > result.BestVideo.BitrateKbps {
				result.BestVideo = descriptor
			}
		}
	}

	return result
}

// normalizeFormat converts one raw stream entry into a descriptor. Streams
// are bucketed by codec fields, never by file extension; entries reporting
// neither codec (storyboards and the like) are skipped.
func normalizeFormat(entry map[string]any) (FormatDescriptor, StreamKind, bool) {
	acodec := stringField(entry, "acodec")
	vcodec := stringField(entry, "vcodec")
	hasAudio := acodec != "" && acodec != "none"
	hasVideo := vcodec != "" && vcodec != "none"
	if !hasAudio && !hasVideo {
		return FormatDescriptor{}, "", false
	}

	descriptor := FormatDescriptor{
		ID:        stringField(entry, "format_id"),
		Container: stringField(entry, "ext"),
	}

	size := int64(floatField(entry, "filesize"))
	if size <= 0 {
		if approx := int64(floatField(entry, "filesize_approx")); approx > 0 {
			size = approx
			descriptor.SizeApprox = true
		}
	}
	descriptor.SizeBytes = size

	if hasVideo {
		descriptor.Kind = StreamVideo
		descriptor.Height = int(floatField(entry, "height"))
		descriptor.BitrateKbps = floatField(entry, "vbr")
		if descriptor.BitrateKbps == 0 {
			descriptor.BitrateKbps = floatField(entry, "tbr")
		}
		vq := quality.ClassifyVideo(descriptor.Height, stringField(entry, "format_note"))
		descriptor.Quality = vq.Quality
		descriptor.Standard = vq.Standard
		descriptor.Display = vq.Display
		return descriptor, StreamVideo, true
	}

	descriptor.Kind = StreamAudio
	descriptor.BitrateKbps = floatField(entry, "abr")
	if descriptor.BitrateKbps == 0 {
		descriptor.BitrateKbps = floatField(entry, "tbr")
	}
	label := quality.ClassifyAudio(descriptor.BitrateKbps)
	descriptor.Quality = label
	descriptor.Standard = label
	descriptor.Display = label
	return descriptor, StreamAudio, true
}

func stringField(bag map[string]any, key string) string {
	value, _ := bag[key].(string)
	return value
}

func floatField(bag map[string]any, key string) float64 {
	switch value := bag[key].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case json.Number:
		f, _ := value.Float64()
		return f
	default:
		return 0
	}
}
