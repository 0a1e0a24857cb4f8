package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"ytlantern/internal/logging"
	"ytlantern/internal/services"
)

// DiskUsageFunc reports utilization of the filesystem hosting path as a
// percentage. It is injectable so sweeps can be tested without filling a
// disk.
type DiskUsageFunc func(path string) (float64, error)

// StatfsUsage is the production DiskUsageFunc, backed by statfs(2).
func StatfsUsage(path string) (float64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, services.Wrap(services.ErrIO, "retention", "statfs", path, err)
	}
	total := stat.Blocks * uint64(stat.Bsize)
	if total == 0 {
		return 0, nil
	}
	free := stat.Bavail * uint64(stat.Bsize)
	used := total - free
	return float64(used) / float64(total) * 100, nil
}

// SweepResult summarizes one retention pass.
type SweepResult struct {
	Purged     bool
	Removed    int
	FreedBytes int64
	Errors     []SweepError
}

// SweepError pairs a path with its removal error.
type SweepError struct {
	Path string
	Err  error
}

// TreeStats is the read-only view of the storage tree.
type TreeStats struct {
	TotalFiles     int
	TotalBytes     int64
	ExpiredEntries int
	DiskUsagePct   float64
}

// Options configures a Manager.
type Options struct {
	Root         string
	MaxAge       time.Duration
	MaxDiskUsage float64
	Interval     time.Duration
	// SkipWindow protects entries modified recently, so an in-flight
	// download is not swept out from under the tool. Defaults to the
	// download timeout order of magnitude.
	SkipWindow time.Duration
	DiskUsage  DiskUsageFunc
	Logger     *slog.Logger
}

// Manager runs periodic retention sweeps over the storage root.
type Manager struct {
	root         string
	maxAge       time.Duration
	maxDiskUsage float64
	interval     time.Duration
	skipWindow   time.Duration
	diskUsage    DiskUsageFunc
	logger       *slog.Logger
}

// NewManager constructs a retention manager.
func NewManager(opts Options) (*Manager, error) {
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		return nil, services.Wrap(services.ErrInvalidArgument, "retention", "new", "storage root required", nil)
	}
	m := &Manager{
		root:         root,
		maxAge:       opts.MaxAge,
		maxDiskUsage: opts.MaxDiskUsage,
		interval:     opts.Interval,
		skipWindow:   opts.SkipWindow,
		diskUsage:    opts.DiskUsage,
		logger:       opts.Logger,
	}
	if m.maxAge <= 0 {
		m.maxAge = 24 * time.Hour
	}
	if m.maxDiskUsage <= 0 {
		m.maxDiskUsage = 90
	}
	if m.interval <= 0 {
		m.interval = time.Hour
	}
	if m.skipWindow <= 0 {
		m.skipWindow = 5 * time.Minute
	}
	if m.diskUsage == nil {
		m.diskUsage = StatfsUsage
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	return m, nil
}

// Sweep runs one retention pass: a full purge when disk utilization exceeds
// the ceiling, otherwise an age-based sweep of the root's direct children.
// Individual removal failures are recorded and do not abort the pass.
func (m *Manager) Sweep(ctx context.Context) SweepResult {
	result := SweepResult{}

	usage, err := m.diskUsage(m.root)
	if err != nil {
		m.logger.Warn("disk usage check failed", logging.Error(err))
	} else if usage > m.maxDiskUsage {
		m.logger.Warn("disk utilization above ceiling, purging storage tree",
			logging.Float64("usage_pct", usage),
			logging.Float64("ceiling_pct", m.maxDiskUsage),
		)
		return m.purge()
	}

	entries, err := os.ReadDir(m.root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: m.root, Err: err})
		}
		return result
	}

	now := time.Now()
	cutoff := now.Add(-m.maxAge)
	protect := now.Add(-m.skipWindow)

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		path := filepath.Join(m.root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		// A recent write means a download may still be in flight.
		if info.ModTime().After(protect) {
			continue
		}
		size, _ := treeSize(path)
		if err := os.RemoveAll(path); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: path, Err: err})
			m.logger.Warn("failed to remove expired entry",
				logging.String("path", path),
				logging.Error(err),
			)
			continue
		}
		result.Removed++
		result.FreedBytes += size
		m.logger.Info("removed expired entry",
			logging.String("path", path),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.Int64("freed_bytes", size),
		)
	}

	if result.Removed > 0 {
		m.logger.Info("retention sweep complete",
			logging.Int("removed", result.Removed),
			logging.Int64("freed_bytes", result.FreedBytes),
		)
	}
	return result
}

// purge removes the whole tree and recreates it empty.
func (m *Manager) purge() SweepResult {
	result := SweepResult{Purged: true}
	entries, _ := os.ReadDir(m.root)
	for _, entry := range entries {
		size, _ := treeSize(filepath.Join(m.root, entry.Name()))
		result.FreedBytes += size
		result.Removed++
	}
	if err := os.RemoveAll(m.root); err != nil {
		result.Errors = append(result.Errors, SweepError{Path: m.root, Err: err})
		return result
	}
	if err := os.MkdirAll(m.root, 0o755); err != nil {
		result.Errors = append(result.Errors, SweepError{Path: m.root, Err: err})
	}
	return result
}

// Stats walks the tree without removing anything.
func (m *Manager) Stats(ctx context.Context) (TreeStats, error) {
	stats := TreeStats{}
	cutoff := time.Now().Add(-m.maxAge)

	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, services.Wrap(services.ErrIO, "retention", "stats", m.root, err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			stats.ExpiredEntries++
		}
	}

	walkErr := filepath.Walk(m.root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			stats.TotalFiles++
			stats.TotalBytes += info.Size()
		}
		return nil
	})
	if walkErr != nil {
		return stats, services.Wrap(services.ErrIO, "retention", "stats", m.root, walkErr)
	}

	if usage, err := m.diskUsage(m.root); err == nil {
		stats.DiskUsagePct = usage
	}
	return stats, nil
}

// Run sweeps on a fixed interval until the context is canceled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// treeSize sums file sizes under path, best effort.
func treeSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
