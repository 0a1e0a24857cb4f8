package videoid

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"ytlantern/internal/services"
)

// Platform identifies the video hosting site an identity belongs to.
type Platform string

const (
	PlatformYouTube  Platform = "youtube"
	PlatformBilibili Platform = "bilibili"
)

// Identity is the canonical address of one video. Part is only meaningful for
// bilibili multi-part videos and is empty otherwise.
type Identity struct {
	Platform Platform
	ID       string
	Part     string
}

var (
	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/watch\?(?:[^#\s]*&)?v=([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtu\.be/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/embed/([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.)?youtube\.com/shorts/([A-Za-z0-9_-]{11})`),
	}
	bilibiliPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?bilibili\.com/video/([A-Za-z0-9]{11,14})`)

	youtubeIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	bilibiliIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{11,14}$`)
	partPattern       = regexp.MustCompile(`^[0-9]+$`)
)

// Resolve classifies a raw URL string into an Identity. Patterns are tried in
// a fixed order and the first match wins; anything unmatched is reported as an
// unsupported URL.
func Resolve(raw string) (Identity, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Identity{}, services.Wrap(services.ErrUnsupportedURL, "videoid", "resolve", "empty url", nil)
	}

	for _, pattern := range youtubePatterns {
		if match := pattern.FindStringSubmatch(trimmed); match != nil {
			return Identity{Platform: PlatformYouTube, ID: match[1]}, nil
		}
	}

	if match := bilibiliPattern.FindStringSubmatch(trimmed); match != nil {
		identity := Identity{Platform: PlatformBilibili, ID: match[1]}
		identity.Part = partParameter(trimmed)
		return identity, nil
	}

	return Identity{}, services.Wrap(services.ErrUnsupportedURL, "videoid", "resolve", fmt.Sprintf("no platform pattern matched %q", trimmed), nil)
}

// partParameter extracts a numeric p= query value if present.
func partParameter(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	part := parsed.Query().Get("p")
	if partPattern.MatchString(part) {
		return part
	}
	return ""
}

// CanonicalURL re-serializes the identity as a normalized URL, discarding any
// extraneous query parameters the original carried.
func (id Identity) CanonicalURL() string {
	switch id.Platform {
	case PlatformBilibili:
		base := "https://www.bilibili.com/video/" + id.ID
		if id.Part != "" {
			return base + "?p=" + id.Part
		}
		return base
	default:
		return "https://www.youtube.com/watch?v=" + id.ID
	}
}

// WithPart returns a copy of the identity carrying the given part number.
func (id Identity) WithPart(part string) Identity {
	id.Part = part
	return id
}

// Validate re-checks the identifier shape, used as the local pre-flight before
// a component spawns a subprocess on caller-supplied values.
func (id Identity) Validate() error {
	switch id.Platform {
	case PlatformYouTube:
		if !youtubeIDPattern.MatchString(id.ID) {
			return services.Wrap(services.ErrInvalidArgument, "videoid", "validate", fmt.Sprintf("malformed youtube id %q", id.ID), nil)
		}
	case PlatformBilibili:
		if !bilibiliIDPattern.MatchString(id.ID) {
			return services.Wrap(services.ErrInvalidArgument, "videoid", "validate", fmt.Sprintf("malformed bilibili id %q", id.ID), nil)
		}
	default:
		return services.Wrap(services.ErrInvalidArgument, "videoid", "validate", fmt.Sprintf("unknown platform %q", id.Platform), nil)
	}
	if id.Part != "" && !partPattern.MatchString(id.Part) {
		return services.Wrap(services.ErrInvalidArgument, "videoid", "validate", fmt.Sprintf("part must be numeric, got %q", id.Part), nil)
	}
	return nil
}
