package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"ytlantern/internal/services"
)

// RunOptions bounds one tool invocation.
type RunOptions struct {
	Dir       string
	Timeout   time.Duration
	MaxOutput int64
}

// Result carries the captured stdio of a finished invocation. Both streams
// are truncated at the configured capture cap.
type Result struct {
	Stdout []byte
	Stderr []byte
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, opts RunOptions) (Result, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, opts RunOptions) (Result, error) {
	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binary, args...) //nolint:gosec
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	limit := opts.MaxOutput
	if limit <= 0 {
		limit = 10 << 20
	}
	stdout := newCappedBuffer(limit)
	stderr := newCappedBuffer(limit)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return result, services.Wrap(services.ErrTimeout, "ytdlp", "run", fmt.Sprintf("%s timed out after %s", binary, opts.Timeout), runCtx.Err())
	}
	if err != nil {
		return result, fmt.Errorf("run %s: %w", binary, err)
	}
	return result, nil
}

// cappedBuffer keeps the first limit bytes written and silently drops the
// rest, so a chatty tool cannot grow the capture without bound.
type cappedBuffer struct {
	limit int64
	data  []byte
}

func newCappedBuffer(limit int64) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.limit - int64(len(b.data))
	if remaining > 0 {
		if int64(len(p)) > remaining {
			b.data = append(b.data, p[:remaining]...)
		} else {
			b.data = append(b.data, p...)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) Bytes() []byte {
	return b.data
}
