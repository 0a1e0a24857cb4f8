package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	str2duration "github.com/xhit/go-str2duration/v2"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeRetention()
	c.normalizeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("VIDEO_STORAGE_PATH"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StorageRoot = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("YTDLP_COOKIE_FILE"); ok && strings.TrimSpace(value) != "" {
		c.Paths.CookieFile = strings.TrimSpace(value)
	}

	var err error
	if c.Paths.StorageRoot, err = expandPath(c.Paths.StorageRoot); err != nil {
		return fmt.Errorf("paths.storage_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CookieFile) != "" {
		if c.Paths.CookieFile, err = expandPath(c.Paths.CookieFile); err != nil {
			return fmt.Errorf("paths.cookie_file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeTools() error {
	c.Tools.YtdlpBinary = strings.TrimSpace(c.Tools.YtdlpBinary)
	if c.Tools.YtdlpBinary == "" {
		c.Tools.YtdlpBinary = defaultYtdlpBinary
	}
	c.Tools.FfmpegBinary = strings.TrimSpace(c.Tools.FfmpegBinary)
	if c.Tools.FfmpegBinary == "" {
		c.Tools.FfmpegBinary = defaultFfmpegBinary
	}

	// YTDLP_TIMEOUT accepts either a bare second count ("45") or a duration
	// string ("1m30s"), matching the container deployment's env contract.
	if value, ok := os.LookupEnv("YTDLP_TIMEOUT"); ok && strings.TrimSpace(value) != "" {
		trimmed := strings.TrimSpace(value)
		if secs, err := strconv.Atoi(trimmed); err == nil {
			c.Tools.ParseTimeoutSeconds = secs
		} else {
			parsed, err := str2duration.ParseDuration(trimmed)
			if err != nil {
				return fmt.Errorf("parse YTDLP_TIMEOUT %q: %w", value, err)
			}
			c.Tools.ParseTimeoutSeconds = int(parsed.Seconds())
		}
	}
	if c.Tools.ParseTimeoutSeconds <= 0 {
		c.Tools.ParseTimeoutSeconds = defaultParseTimeoutSeconds
	}
	if c.Tools.SubtitleTimeoutSeconds <= 0 {
		c.Tools.SubtitleTimeoutSeconds = defaultSubtitleTimeoutSeconds
	}
	if c.Tools.DownloadTimeoutSeconds <= 0 {
		c.Tools.DownloadTimeoutSeconds = defaultDownloadTimeoutSeconds
	}
	if c.Tools.MaxCaptureBytes <= 0 {
		c.Tools.MaxCaptureBytes = defaultMaxCaptureBytes
	}
	return nil
}

func (c *Config) normalizeRetention() {
	if c.Retention.IntervalSeconds <= 0 {
		c.Retention.IntervalSeconds = defaultRetentionInterval
	}
	if c.Retention.MaxAgeHours <= 0 {
		c.Retention.MaxAgeHours = defaultRetentionMaxAgeHours
	}
	if c.Retention.MaxDiskUsagePercent <= 0 {
		c.Retention.MaxDiskUsagePercent = defaultMaxDiskUsagePercent
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.TTLSeconds <= 0 {
		c.Cache.TTLSeconds = defaultCacheTTLSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
