package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateRetention(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StorageRoot) == "" {
		return errors.New("paths.storage_root must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateTools() error {
	if strings.TrimSpace(c.Tools.YtdlpBinary) == "" {
		return errors.New("tools.ytdlp_binary must be set")
	}
	if strings.TrimSpace(c.Tools.FfmpegBinary) == "" {
		return errors.New("tools.ffmpeg_binary must be set")
	}
	return ensurePositiveMap(map[string]int{
		"tools.parse_timeout":    c.Tools.ParseTimeoutSeconds,
		"tools.subtitle_timeout": c.Tools.SubtitleTimeoutSeconds,
		"tools.download_timeout": c.Tools.DownloadTimeoutSeconds,
	})
}

func (c *Config) validateRetention() error {
	if err := ensurePositiveMap(map[string]int{
		"retention.interval":      c.Retention.IntervalSeconds,
		"retention.max_age_hours": c.Retention.MaxAgeHours,
	}); err != nil {
		return err
	}
	if c.Retention.MaxDiskUsagePercent <= 0 || c.Retention.MaxDiskUsagePercent > 100 {
		return errors.New("retention.max_disk_usage_percent must be between 1 and 100")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
