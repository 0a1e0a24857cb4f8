package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file location configuration.
type Paths struct {
	StorageRoot string `toml:"storage_root"`
	LogDir      string `toml:"log_dir"`
	CookieFile  string `toml:"cookie_file"`
}

// Tools contains configuration for the external extraction and transcoding tools.
type Tools struct {
	YtdlpBinary            string `toml:"ytdlp_binary"`
	FfmpegBinary           string `toml:"ffmpeg_binary"`
	ParseTimeoutSeconds    int    `toml:"parse_timeout"`
	SubtitleTimeoutSeconds int    `toml:"subtitle_timeout"`
	DownloadTimeoutSeconds int    `toml:"download_timeout"`
	MaxCaptureBytes        int64  `toml:"max_capture_bytes"`
}

// Retention contains configuration for the temporary-storage sweep.
type Retention struct {
	IntervalSeconds     int `toml:"interval"`
	MaxAgeHours         int `toml:"max_age_hours"`
	MaxDiskUsagePercent int `toml:"max_disk_usage_percent"`
}

// Cache contains configuration for the parse-result cache.
type Cache struct {
	Enabled    bool `toml:"enabled"`
	TTLSeconds int  `toml:"ttl"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the service.
//
// Configuration sections by subsystem:
//   - Paths: storage tree, log directory, optional cookie file
//   - Tools: external binary names, per-operation timeouts, output capture cap
//   - Retention: sweep interval, max entry age, disk-utilization ceiling
//   - Cache: parse-result cache toggle and TTL
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Tools     Tools     `toml:"tools"`
	Retention Retention `toml:"retention"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ytlantern/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ytlantern.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the storage and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StorageRoot, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CookieFilePath returns the configured cookie file path when the file exists
// on disk, otherwise an empty string. Tool invocations only receive the cookie
// flag when a cookie file is actually present.
func (c *Config) CookieFilePath() string {
	path := strings.TrimSpace(c.Paths.CookieFile)
	if path == "" {
		return ""
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}

// ParseTimeout returns the wall-clock bound for metadata extraction calls.
func (c *Config) ParseTimeout() time.Duration {
	return time.Duration(c.Tools.ParseTimeoutSeconds) * time.Second
}

// SubtitleTimeout returns the wall-clock bound for subtitle fetch calls.
func (c *Config) SubtitleTimeout() time.Duration {
	return time.Duration(c.Tools.SubtitleTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the wall-clock bound for video download calls.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Tools.DownloadTimeoutSeconds) * time.Second
}

// RetentionInterval returns how often the retention sweep runs.
func (c *Config) RetentionInterval() time.Duration {
	return time.Duration(c.Retention.IntervalSeconds) * time.Second
}

// RetentionMaxAge returns the maximum age a storage entry may reach before a
// sweep removes it.
func (c *Config) RetentionMaxAge() time.Duration {
	return time.Duration(c.Retention.MaxAgeHours) * time.Hour
}

// CacheTTL returns how long a cached parse result stays valid.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
