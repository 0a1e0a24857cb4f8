package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Options control how much history Tail emits and whether it keeps
// following the file afterwards.
type Options struct {
	// Lines is the number of trailing lines written before following
	// starts. Zero means no history.
	Lines int
	// Follow keeps Tail running, emitting new lines until the context is
	// canceled.
	Follow bool
	// Poll is the follow polling interval. Defaults to 500ms.
	Poll time.Duration
}

// Tail writes the last Options.Lines lines of the file at path to w. With
// Follow set it then polls for appended lines until ctx is canceled, in
// which case it returns nil. A missing file is not an error; follow mode
// waits for it to appear.
func Tail(ctx context.Context, w io.Writer, path string, opts Options) error {
	if opts.Poll <= 0 {
		opts.Poll = 500 * time.Millisecond
	}

	offset, err := writeHistory(w, path, opts.Lines)
	if err != nil {
		return err
	}
	if !opts.Follow {
		return nil
	}

	ticker := time.NewTicker(opts.Poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			offset, err = writeNewLines(w, path, offset)
			if err != nil {
				return err
			}
		}
	}
}

// writeHistory emits the trailing limit lines and returns the end-of-file
// offset follow mode should resume from.
func writeHistory(w io.Writer, path string, limit int) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("log path %q is a directory", path)
	}

	if limit > 0 {
		ring := make([]string, 0, limit)
		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if len(ring) == limit {
				copy(ring, ring[1:])
				ring = ring[:limit-1]
			}
			ring = append(ring, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("read log file: %w", err)
		}
		for _, line := range ring {
			fmt.Fprintln(w, line)
		}
	}
	return info.Size(), nil
}

// writeNewLines emits complete lines appended past offset and returns the
// new offset. A shrunken file means rotation or truncation; reading
// restarts from the beginning.
func writeNewLines(w io.Writer, path string, offset int64) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	size := info.Size()
	if size < offset {
		offset = 0
	}
	if size == offset {
		return offset, nil
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err == nil {
			offset += int64(len(line))
			fmt.Fprint(w, line)
			continue
		}
		if errors.Is(err, io.EOF) {
			// Partial trailing line stays buffered until the writer
			// finishes it.
			return offset, nil
		}
		return offset, fmt.Errorf("read log file: %w", err)
	}
}
