package config

const (
	defaultStorageRoot            = "~/.local/share/ytlantern/videos"
	defaultLogDir                 = "~/.local/share/ytlantern/logs"
	defaultYtdlpBinary            = "yt-dlp"
	defaultFfmpegBinary           = "ffmpeg"
	defaultParseTimeoutSeconds    = 30
	defaultSubtitleTimeoutSeconds = 120
	defaultDownloadTimeoutSeconds = 300
	defaultMaxCaptureBytes        = 10 << 20
	defaultRetentionInterval      = 3600
	defaultRetentionMaxAgeHours   = 24
	defaultMaxDiskUsagePercent    = 90
	defaultCacheTTLSeconds        = 3600
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageRoot: defaultStorageRoot,
			LogDir:      defaultLogDir,
		},
		Tools: Tools{
			YtdlpBinary:            defaultYtdlpBinary,
			FfmpegBinary:           defaultFfmpegBinary,
			ParseTimeoutSeconds:    defaultParseTimeoutSeconds,
			SubtitleTimeoutSeconds: defaultSubtitleTimeoutSeconds,
			DownloadTimeoutSeconds: defaultDownloadTimeoutSeconds,
			MaxCaptureBytes:        defaultMaxCaptureBytes,
		},
		Retention: Retention{
			IntervalSeconds:     defaultRetentionInterval,
			MaxAgeHours:         defaultRetentionMaxAgeHours,
			MaxDiskUsagePercent: defaultMaxDiskUsagePercent,
		},
		Cache: Cache{
			Enabled:    true,
			TTLSeconds: defaultCacheTTLSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
