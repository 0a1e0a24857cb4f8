package cache

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"ytlantern/internal/mediainfo"
	"ytlantern/internal/services"
)

// Store manages the parse-result cache backed by SQLite.
type Store struct {
	db   *sql.DB
	ttl  time.Duration
	path string
	now  func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS parse_cache (
    cache_key   TEXT PRIMARY KEY,
    video_id    TEXT NOT NULL,
    platform    TEXT NOT NULL,
    payload     TEXT NOT NULL,
    created_at  INTEGER NOT NULL,
    expires_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parse_cache_video ON parse_cache (video_id);
CREATE INDEX IF NOT EXISTS idx_parse_cache_expiry ON parse_cache (expires_at);
`

// Open initializes or connects to the cache database.
func Open(path string, ttl time.Duration) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{db: db, ttl: ttl, path: path, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Key derives the stable cache key for a URL and platform pair.
func Key(url, platform string) string {
	sum := md5.Sum([]byte(url + ":" + platform))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached parse result for the key, or nil when absent or
// expired. Expired rows are removed on the way out.
func (s *Store) Get(ctx context.Context, key string) (*mediainfo.ParseResult, error) {
	var payload string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM parse_cache WHERE cache_key = ?`, key,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache: %w", err)
	}

	if s.now().Unix() >= expiresAt {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM parse_cache WHERE cache_key = ?`, key)
		return nil, nil
	}

	var result mediainfo.ParseResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		// A corrupt row is treated as a miss and dropped.
		_, _ = s.db.ExecContext(ctx, `DELETE FROM parse_cache WHERE cache_key = ?`, key)
		return nil, nil
	}
	return &result, nil
}

// Put stores a parse result under the key with the configured TTL.
func (s *Store) Put(ctx context.Context, key string, result *mediainfo.ParseResult) error {
	if result == nil {
		return services.Wrap(services.ErrInvalidArgument, "cache", "put", "nil result", nil)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parse_cache (cache_key, video_id, platform, payload, created_at, expires_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(cache_key) DO UPDATE SET
             payload = excluded.payload,
             created_at = excluded.created_at,
             expires_at = excluded.expires_at`,
		key, result.VideoID, result.Platform, string(payload), now.Unix(), now.Add(s.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert cache row: %w", err)
	}
	return nil
}

// GetByVideoID returns the freshest unexpired entry for a video identifier.
func (s *Store) GetByVideoID(ctx context.Context, videoID string) (*mediainfo.ParseResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM parse_cache
         WHERE video_id = ? AND expires_at > ?
         ORDER BY created_at DESC LIMIT 1`,
		videoID, s.now().Unix(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cache by video id: %w", err)
	}
	var result mediainfo.ParseResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, nil
	}
	return &result, nil
}

// Clear removes every cached entry and reports how many were dropped.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM parse_cache`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// Stats summarizes cache occupancy.
type Stats struct {
	Entries int64 `json:"entries"`
	Expired int64 `json:"expired"`
}

// GetStats counts total and expired rows.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{}
	nowUnix := s.now().Unix()
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM parse_cache`).Scan(&stats.Entries); err != nil {
		return stats, fmt.Errorf("count cache rows: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM parse_cache WHERE expires_at <= ?`, nowUnix,
	).Scan(&stats.Expired); err != nil {
		return stats, fmt.Errorf("count expired rows: %w", err)
	}
	return stats, nil
}
