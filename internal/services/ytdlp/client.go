package ytdlp

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Tool defines the extraction-tool behaviour required by the resolution and
// download components.
type Tool interface {
	ExtractInfo(ctx context.Context, url string) ([]byte, error)
	ListSubtitles(ctx context.Context, url string) (string, error)
	FetchSubtitle(ctx context.Context, req SubtitleRequest) (Result, error)
	Download(ctx context.Context, req DownloadRequest) (Result, error)
}

// SubtitleRequest describes one subtitle fetch invocation.
type SubtitleRequest struct {
	URL            string
	Language       string
	Auto           bool
	OutputTemplate string
	WorkDir        string
}

// DownloadRequest describes one media download invocation.
type DownloadRequest struct {
	URL            string
	FormatSpec     string
	OutputTemplate string
	RecodeTarget   string
	MergeContainer string
	WorkDir        string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithCookieFile attaches a cookie file to every invocation. An empty path
// leaves the flag off.
func WithCookieFile(path string) Option {
	return func(c *Client) {
		c.cookieFile = strings.TrimSpace(path)
	}
}

// WithTimeouts overrides the per-operation wall-clock bounds.
func WithTimeouts(parse, subtitle, download time.Duration) Option {
	return func(c *Client) {
		if parse > 0 {
			c.parseTimeout = parse
		}
		if subtitle > 0 {
			c.subtitleTimeout = subtitle
		}
		if download > 0 {
			c.downloadTimeout = download
		}
	}
}

// WithMaxCapture overrides the output-capture cap.
func WithMaxCapture(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxCapture = limit
		}
	}
}

// Client wraps extraction-tool CLI interactions.
type Client struct {
	binary          string
	cookieFile      string
	exec            Executor
	maxCapture      int64
	parseTimeout    time.Duration
	subtitleTimeout time.Duration
	downloadTimeout time.Duration
}

// New constructs an extraction-tool client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("extraction tool binary required")
	}
	client := &Client{
		binary:          binary,
		exec:            commandExecutor{},
		maxCapture:      10 << 20,
		parseTimeout:    30 * time.Second,
		subtitleTimeout: 2 * time.Minute,
		downloadTimeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// baseArgs are shared by every invocation. The cookie flag is only present
// when a cookie file was configured.
func (c *Client) baseArgs() []string {
	args := []string{"--no-warnings", "--no-playlist"}
	if c.cookieFile != "" {
		args = append(args, "--cookies", c.cookieFile)
	}
	return args
}

// ExtractInfo asks the tool for structured metadata without downloading.
func (c *Client) ExtractInfo(ctx context.Context, url string) ([]byte, error) {
	args := append(c.baseArgs(), "-J", "--no-download", url)
	result, err := c.exec.Run(ctx, c.binary, args, RunOptions{Timeout: c.parseTimeout, MaxOutput: c.maxCapture})
	if err != nil {
		return nil, err
	}
	return result.Stdout, nil
}

// ListSubtitles runs the tool in subtitle-listing mode and returns the raw
// text output for the caller's line scanner.
func (c *Client) ListSubtitles(ctx context.Context, url string) (string, error) {
	args := append(c.baseArgs(), "--list-subs", "--skip-download", url)
	result, err := c.exec.Run(ctx, c.binary, args, RunOptions{Timeout: c.parseTimeout, MaxOutput: c.maxCapture})
	if err != nil {
		return "", err
	}
	return string(result.Stdout), nil
}

// FetchSubtitle downloads one subtitle track plus the metadata sidecar into
// the request's working directory.
func (c *Client) FetchSubtitle(ctx context.Context, req SubtitleRequest) (Result, error) {
	args := append(c.baseArgs(), "--skip-download", "--write-info-json")
	if req.Auto {
		args = append(args, "--write-auto-subs")
	} else {
		args = append(args, "--write-subs")
	}
	args = append(args, "--sub-langs", req.Language, "-o", req.OutputTemplate, req.URL)
	return c.exec.Run(ctx, c.binary, args, RunOptions{Dir: req.WorkDir, Timeout: c.subtitleTimeout, MaxOutput: c.maxCapture})
}

// Download runs a media download, optionally merging two streams and
// recoding the result. Stdout is captured for pathname recovery.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (Result, error) {
	args := append(c.baseArgs(), "-f", req.FormatSpec, "-o", req.OutputTemplate, "-k", "--write-info-json")
	if req.RecodeTarget != "" {
		args = append(args, "--recode-video", req.RecodeTarget)
	}
	if req.MergeContainer != "" {
		args = append(args, "--merge-output-format", req.MergeContainer)
	}
	args = append(args, req.URL)
	return c.exec.Run(ctx, c.binary, args, RunOptions{Dir: req.WorkDir, Timeout: c.downloadTimeout, MaxOutput: c.maxCapture})
}
