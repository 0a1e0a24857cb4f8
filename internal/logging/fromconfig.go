package logging

import (
	"log/slog"
	"path/filepath"

	"ytlantern/internal/config"
)

// NewFromConfig builds the service logger from the logging section, writing
// to stdout and the log file under the configured log directory.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	return New(Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stdout",
			filepath.Join(cfg.Paths.LogDir, "ytlantern.log"),
		},
	})
}
