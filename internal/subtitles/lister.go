package subtitles

import (
	"bufio"
	"context"
	"log/slog"
	"regexp"
	"strings"

	"ytlantern/internal/logging"
)

// ListClient is the slice of the extraction tool the lister needs.
type ListClient interface {
	ListSubtitles(ctx context.Context, url string) (string, error)
}

// Lister parses the extraction tool's subtitle listing output.
type Lister struct {
	tool   ListClient
	logger *slog.Logger
}

// NewLister constructs a lister around the given tool client.
func NewLister(tool ListClient, logger *slog.Logger) *Lister {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Lister{tool: tool, logger: logger}
}

// List returns available subtitle identifiers for the URL. Availability is
// best-effort metadata, so a tool failure yields an empty list rather than
// an error.
func (l *Lister) List(ctx context.Context, url string) []string {
	output, err := l.tool.ListSubtitles(ctx, url)
	if err != nil {
		l.logger.Warn("subtitle listing failed",
			logging.String("url", url),
			logging.Error(err),
		)
		return []string{}
	}
	return ScanListing(output)
}

// scanState names the three states of the listing scanner.
type scanState int

const (
	stateScanning scanState = iota
	stateOfficialList
	stateDone
)

var languageCodePattern = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z0-9]{2,8})*$`)

// ScanListing walks the listing output line by line. The scanner starts in a
// scanning state looking for section markers, collects language codes while
// inside the official subtitle section, and stops at the first line that is
// neither a header nor a language code. Unexpected lines outside the official
// section are ignored rather than treated as errors.
func ScanListing(output string) []string {
	var official []string
	hasAutoCaptions := false
	state := stateScanning

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() && state != stateDone {
		line := strings.TrimSpace(scanner.Text())

		switch state {
		case stateScanning:
			lower := strings.ToLower(line)
			if strings.Contains(lower, "available automatic captions") {
				hasAutoCaptions = true
				continue
			}
			if strings.Contains(lower, "available subtitles") {
				state = stateOfficialList
			}
		case stateOfficialList:
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "Language") {
				continue
			}
			code := firstField(line)
			if code == "danmaku" || languageCodePattern.MatchString(code) {
				official = append(official, code)
				continue
			}
			state = stateDone
		}
	}

	if len(official) > 0 {
		return official
	}
	if hasAutoCaptions {
		return []string{"auto"}
	}
	return []string{}
}

func firstField(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
