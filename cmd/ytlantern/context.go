package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"ytlantern/internal/api"
	"ytlantern/internal/cache"
	"ytlantern/internal/config"
	"ytlantern/internal/download"
	"ytlantern/internal/logging"
	"ytlantern/internal/mediainfo"
	"ytlantern/internal/retention"
	"ytlantern/internal/services/ffmpeg"
	"ytlantern/internal/services/ytdlp"
	"ytlantern/internal/storage"
	"ytlantern/internal/subtitles"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	serviceOnce sync.Once
	service     *api.Service
	cacheStore  *cache.Store
	retention   *retention.Manager
	serviceErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureService wires the full component graph once per process.
func (c *commandContext) ensureService() (*api.Service, error) {
	c.serviceOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.serviceErr = err
			return
		}

		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.serviceErr = fmt.Errorf("init logger: %w", err)
			return
		}

		tool, err := ytdlp.New(cfg.Tools.YtdlpBinary,
			ytdlp.WithCookieFile(cfg.CookieFilePath()),
			ytdlp.WithTimeouts(cfg.ParseTimeout(), cfg.SubtitleTimeout(), cfg.DownloadTimeout()),
			ytdlp.WithMaxCapture(cfg.Tools.MaxCaptureBytes),
		)
		if err != nil {
			c.serviceErr = err
			return
		}

		converter, err := ffmpeg.New(cfg.Tools.FfmpegBinary, ffmpeg.WithTimeout(cfg.SubtitleTimeout()))
		if err != nil {
			c.serviceErr = err
			return
		}

		layout, err := storage.NewLayout(cfg.Paths.StorageRoot)
		if err != nil {
			c.serviceErr = err
			return
		}

		lister := subtitles.NewLister(tool, logging.NewComponentLogger(logger, "subtitles"))
		extractor := mediainfo.NewExtractor(tool,
			mediainfo.WithSubtitleLister(lister),
			mediainfo.WithLogger(logging.NewComponentLogger(logger, "mediainfo")),
		)
		videos := download.NewDownloader(tool, layout, logging.NewComponentLogger(logger, "download"))
		subs := subtitles.NewDownloader(tool, converter, layout, logging.NewComponentLogger(logger, "subtitles"))

		manager, err := retention.NewManager(retention.Options{
			Root:         cfg.Paths.StorageRoot,
			MaxAge:       cfg.RetentionMaxAge(),
			MaxDiskUsage: float64(cfg.Retention.MaxDiskUsagePercent),
			Interval:     cfg.RetentionInterval(),
			SkipWindow:   cfg.DownloadTimeout(),
			Logger:       logging.NewComponentLogger(logger, "retention"),
		})
		if err != nil {
			c.serviceErr = err
			return
		}
		c.retention = manager

		opts := []api.Option{api.WithLogger(logger)}
		if cfg.Cache.Enabled {
			store, err := cache.Open(filepath.Join(cfg.Paths.LogDir, "parse-cache.db"), cfg.CacheTTL())
			if err != nil {
				c.serviceErr = fmt.Errorf("open parse cache: %w", err)
				return
			}
			c.cacheStore = store
			opts = append(opts, api.WithCache(store))
		}

		c.service = api.New(extractor, videos, subs, manager, opts...)
	})
	return c.service, c.serviceErr
}

// parseCache returns the cache store, or nil when caching is disabled.
func (c *commandContext) parseCache() (*cache.Store, error) {
	if _, err := c.ensureService(); err != nil {
		return nil, err
	}
	return c.cacheStore, nil
}

func (c *commandContext) retentionManager() (*retention.Manager, error) {
	if _, err := c.ensureService(); err != nil {
		return nil, err
	}
	return c.retention, nil
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}
