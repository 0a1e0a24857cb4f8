package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"ytlantern/internal/services"
)

// Converter transforms one media file into another format.
type Converter interface {
	Convert(ctx context.Context, src, dst string) error
}

// Option configures the client.
type Option func(*Client)

// WithRunner injects a custom process runner (primarily for tests).
func WithRunner(run RunFunc) Option {
	return func(c *Client) {
		if run != nil {
			c.run = run
		}
	}
}

// WithTimeout bounds each conversion.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// RunFunc executes the transcoding binary with the given arguments and
// returns its combined stderr output on failure.
type RunFunc func(ctx context.Context, binary string, args []string) ([]byte, error)

// Client drives the transcoding tool as a subprocess.
type Client struct {
	binary  string
	timeout time.Duration
	run     RunFunc
}

// New constructs a transcoding client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transcoding tool binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: 2 * time.Minute,
		run:     runCommand,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Convert rewrites src into dst, with the target format inferred from the
// destination extension. An existing dst is overwritten.
func (c *Client) Convert(ctx context.Context, src, dst string) error {
	if strings.TrimSpace(src) == "" || strings.TrimSpace(dst) == "" {
		return services.Wrap(services.ErrInvalidArgument, "ffmpeg", "convert", "source and destination paths required", nil)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"-y", "-i", src, dst}
	stderr, err := c.run(runCtx, c.binary, args)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "ffmpeg", "convert", fmt.Sprintf("%s timed out after %s", c.binary, c.timeout), runCtx.Err())
		}
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrConversion, "ffmpeg", "convert", detail, err)
	}
	return nil
}

func runCommand(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
