package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"ytlantern/internal/config"
	"ytlantern/internal/logging"
	"ytlantern/internal/retention"
)

// runner owns the daemon lock and the retention manager for one daemon
// process.
type runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	lock    *flock.Flock
	manager *retention.Manager
}

func newRunner(cfg *config.Config, logger *slog.Logger) (*runner, error) {
	manager, err := retention.NewManager(retention.Options{
		Root:         cfg.Paths.StorageRoot,
		MaxAge:       cfg.RetentionMaxAge(),
		MaxDiskUsage: float64(cfg.Retention.MaxDiskUsagePercent),
		Interval:     cfg.RetentionInterval(),
		SkipWindow:   cfg.DownloadTimeout(),
		Logger:       logging.NewComponentLogger(logger, "retention"),
	})
	if err != nil {
		return nil, fmt.Errorf("configure retention: %w", err)
	}

	return &runner{
		cfg:     cfg,
		logger:  logger,
		lock:    flock.New(lockPath(cfg)),
		manager: manager,
	}, nil
}

// lockPath returns the daemon lock file location under the log directory.
func lockPath(cfg *config.Config) string {
	if cfg == nil {
		return "ytlanternd.lock"
	}
	return filepath.Join(cfg.Paths.LogDir, "ytlanternd.lock")
}

// Run acquires the single-instance lock, performs one immediate sweep, then
// sweeps on the configured interval until the context is canceled.
func (r *runner) Run(ctx context.Context) error {
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !ok {
		return errors.New("another ytlanternd instance is already running")
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release daemon lock", "error", err)
		}
	}()

	r.logger.Info("ytlanternd started",
		"storage_root", r.cfg.Paths.StorageRoot,
		"sweep_interval", r.cfg.RetentionInterval().String(),
		"lock", lockPath(r.cfg))

	r.manager.Sweep(ctx)
	r.manager.Run(ctx)

	r.logger.Info("ytlanternd shutting down")
	return nil
}
