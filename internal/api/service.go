package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ytlantern/internal/cache"
	"ytlantern/internal/download"
	"ytlantern/internal/logging"
	"ytlantern/internal/mediainfo"
	"ytlantern/internal/retention"
	"ytlantern/internal/services"
	"ytlantern/internal/subtitles"
	"ytlantern/internal/videoid"
)

// Parser resolves a URL into a ParseResult.
type Parser interface {
	Parse(ctx context.Context, rawURL string) (*mediainfo.ParseResult, error)
}

// VideoDownloader runs download jobs and answers status polls.
type VideoDownloader interface {
	Run(ctx context.Context, req download.Request) (download.Job, error)
	GetStatus(identity videoid.Identity, formatSpec string) (download.Status, error)
}

// SubtitleFetcher fetches one subtitle track.
type SubtitleFetcher interface {
	Fetch(ctx context.Context, req subtitles.Request) (*subtitles.Track, error)
}

// StatsProvider reports storage tree occupancy.
type StatsProvider interface {
	Stats(ctx context.Context) (retention.TreeStats, error)
}

// ParseCache is the optional cache in front of the parser.
type ParseCache interface {
	Get(ctx context.Context, key string) (*mediainfo.ParseResult, error)
	Put(ctx context.Context, key string, result *mediainfo.ParseResult) error
}

// Service is the single entry point for inbound requests.
type Service struct {
	parser    Parser
	videos    VideoDownloader
	subs      SubtitleFetcher
	retention StatsProvider
	cache     ParseCache
	logger    *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithCache attaches a parse-result cache.
func WithCache(store ParseCache) Option {
	return func(s *Service) {
		s.cache = store
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs the facade.
func New(parser Parser, videos VideoDownloader, subs SubtitleFetcher, stats StatsProvider, opts ...Option) *Service {
	s := &Service{
		parser:    parser,
		videos:    videos,
		subs:      subs,
		retention: stats,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// correlate tags the context with a fresh correlation ID and returns a
// logger carrying it.
func (s *Service) correlate(ctx context.Context) (context.Context, *slog.Logger) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	return ctx, logging.WithContext(ctx, s.logger)
}

// Parse resolves a URL, consulting the cache first when one is attached.
func (s *Service) Parse(ctx context.Context, rawURL string) (*mediainfo.ParseResult, error) {
	ctx, logger := s.correlate(ctx)
	start := time.Now()

	var cacheKey string
	if s.cache != nil {
		if identity, err := videoid.Resolve(rawURL); err == nil {
			cacheKey = cache.Key(rawURL, string(identity.Platform))
			if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
				logger.Info("parse served from cache",
					logging.String("url", rawURL),
					logging.String(logging.FieldVideoID, cached.VideoID),
				)
				return cached, nil
			}
		}
	}

	result, err := s.parser.Parse(ctx, rawURL)
	if err != nil {
		logger.Warn("parse failed",
			logging.String("url", rawURL),
			logging.String("category", services.Category(err)),
			logging.Error(err),
		)
		return nil, err
	}

	if s.cache != nil && cacheKey != "" {
		if err := s.cache.Put(ctx, cacheKey, result); err != nil {
			logger.Warn("cache store failed", logging.Error(err))
		}
	}

	logger.Info("parse complete",
		logging.String(logging.FieldVideoID, result.VideoID),
		logging.String(logging.FieldPlatform, result.Platform),
		logging.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}

// DownloadVideo runs one video download job.
func (s *Service) DownloadVideo(ctx context.Context, req download.Request) (download.Job, error) {
	ctx, logger := s.correlate(ctx)

	job, err := s.videos.Run(ctx, req)
	if err != nil {
		logger.Warn("download rejected",
			logging.String(logging.FieldVideoID, req.Identity.ID),
			logging.String("category", services.Category(err)),
			logging.Error(err),
		)
		return download.Job{}, err
	}
	logger.Info("download finished",
		logging.String(logging.FieldVideoID, req.Identity.ID),
		logging.String("format", req.FormatSpec),
		logging.Bool("succeeded", job.DownloadSucceed),
	)
	return job, nil
}

// DownloadSubtitle fetches one subtitle track.
func (s *Service) DownloadSubtitle(ctx context.Context, req subtitles.Request) (*subtitles.Track, error) {
	ctx, logger := s.correlate(ctx)

	track, err := s.subs.Fetch(ctx, req)
	if err != nil {
		logger.Warn("subtitle fetch failed",
			logging.String(logging.FieldVideoID, req.Identity.ID),
			logging.String("language", req.Language),
			logging.String("category", services.Category(err)),
			logging.Error(err),
		)
		return nil, err
	}
	logger.Info("subtitle fetched",
		logging.String(logging.FieldVideoID, req.Identity.ID),
		logging.String("language", req.Language),
		logging.String("filename", track.Filename),
	)
	return track, nil
}

// DownloadStatus answers a filesystem-only existence poll.
func (s *Service) DownloadStatus(ctx context.Context, identity videoid.Identity, formatSpec string) (download.Status, error) {
	_, logger := s.correlate(ctx)

	status, err := s.videos.GetStatus(identity, formatSpec)
	if err != nil {
		logger.Warn("status check rejected",
			logging.String(logging.FieldVideoID, identity.ID),
			logging.Error(err),
		)
		return download.Status{}, err
	}
	return status, nil
}

// StorageStats reports storage tree occupancy for operational callers.
func (s *Service) StorageStats(ctx context.Context) (retention.TreeStats, error) {
	ctx, logger := s.correlate(ctx)

	stats, err := s.retention.Stats(ctx)
	if err != nil {
		logger.Warn("storage stats failed", logging.Error(err))
		return retention.TreeStats{}, err
	}
	return stats, nil
}
