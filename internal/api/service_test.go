package api_test

import (
	"context"
	"errors"
	"testing"

	"ytlantern/internal/api"
	"ytlantern/internal/cache"
	"ytlantern/internal/download"
	"ytlantern/internal/mediainfo"
	"ytlantern/internal/retention"
	"ytlantern/internal/services"
	"ytlantern/internal/subtitles"
	"ytlantern/internal/videoid"
)

type stubParser struct {
	calls  int
	result *mediainfo.ParseResult
	err    error
}

func (s *stubParser) Parse(context.Context, string) (*mediainfo.ParseResult, error) {
	s.calls++
	return s.result, s.err
}

type stubVideos struct {
	job    download.Job
	status download.Status
	err    error
}

func (s *stubVideos) Run(context.Context, download.Request) (download.Job, error) {
	return s.job, s.err
}

func (s *stubVideos) GetStatus(videoid.Identity, string) (download.Status, error) {
	return s.status, s.err
}

type stubSubs struct {
	track *subtitles.Track
	err   error
}

func (s *stubSubs) Fetch(context.Context, subtitles.Request) (*subtitles.Track, error) {
	return s.track, s.err
}

type stubStats struct {
	stats retention.TreeStats
	err   error
}

func (s *stubStats) Stats(context.Context) (retention.TreeStats, error) {
	return s.stats, s.err
}

type memoryCache struct {
	entries map[string]*mediainfo.ParseResult
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*mediainfo.ParseResult{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (*mediainfo.ParseResult, error) {
	return m.entries[key], nil
}

func (m *memoryCache) Put(_ context.Context, key string, result *mediainfo.ParseResult) error {
	m.puts++
	m.entries[key] = result
	return nil
}

func sampleResult() *mediainfo.ParseResult {
	return &mediainfo.ParseResult{Platform: "youtube", VideoID: "dQw4w9WgXcQ", Title: "Test"}
}

func TestParseCachesResult(t *testing.T) {
	parser := &stubParser{result: sampleResult()}
	store := newMemoryCache()
	svc := api.New(parser, &stubVideos{}, &stubSubs{}, &stubStats{}, api.WithCache(store))

	url := "https://youtu.be/dQw4w9WgXcQ"
	if _, err := svc.Parse(context.Background(), url); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parser.calls != 1 || store.puts != 1 {
		t.Fatalf("calls = %d, puts = %d", parser.calls, store.puts)
	}

	// Second request is served from the cache.
	result, err := svc.Parse(context.Background(), url)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parser.calls != 1 {
		t.Fatalf("parser called %d times, want 1", parser.calls)
	}
	if result.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("result = %+v", result)
	}

	if _, ok := store.entries[cache.Key(url, "youtube")]; !ok {
		t.Fatal("expected entry under the derived key")
	}
}

func TestParseWithoutCache(t *testing.T) {
	parser := &stubParser{result: sampleResult()}
	svc := api.New(parser, &stubVideos{}, &stubSubs{}, &stubStats{})

	for i := 0; i < 2; i++ {
		if _, err := svc.Parse(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err != nil {
			t.Fatalf("Parse: %v", err)
		}
	}
	if parser.calls != 2 {
		t.Fatalf("parser called %d times, want 2", parser.calls)
	}
}

func TestParsePropagatesFailure(t *testing.T) {
	wantErr := services.Wrap(services.ErrUnsupportedURL, "videoid", "resolve", "no match", nil)
	svc := api.New(&stubParser{err: wantErr}, &stubVideos{}, &stubSubs{}, &stubStats{})

	_, err := svc.Parse(context.Background(), "https://vimeo.com/1")
	if !errors.Is(err, services.ErrUnsupportedURL) {
		t.Fatalf("err = %v", err)
	}
}

func TestDownloadVideoPassesThroughJob(t *testing.T) {
	videos := &stubVideos{job: download.Job{DownloadSucceed: false, Cause: "ERROR: gone"}}
	svc := api.New(&stubParser{}, videos, &stubSubs{}, &stubStats{})

	job, err := svc.DownloadVideo(context.Background(), download.Request{
		Identity:   videoid.Identity{Platform: videoid.PlatformYouTube, ID: "dQw4w9WgXcQ"},
		FormatSpec: "137",
	})
	if err != nil {
		t.Fatalf("DownloadVideo: %v", err)
	}
	if job.Cause != "ERROR: gone" {
		t.Fatalf("job = %+v", job)
	}
}

func TestDownloadSubtitle(t *testing.T) {
	subs := &stubSubs{track: &subtitles.Track{Title: "T", Filename: "x.vtt", Content: []byte("WEBVTT")}}
	svc := api.New(&stubParser{}, &stubVideos{}, subs, &stubStats{})

	track, err := svc.DownloadSubtitle(context.Background(), subtitles.Request{
		Identity:  videoid.Identity{Platform: videoid.PlatformYouTube, ID: "dQw4w9WgXcQ"},
		Language:  "en",
		Container: "vtt",
		Origin:    subtitles.OriginNative,
	})
	if err != nil {
		t.Fatalf("DownloadSubtitle: %v", err)
	}
	if track.Filename != "x.vtt" {
		t.Fatalf("track = %+v", track)
	}
}

func TestDownloadStatusAndStats(t *testing.T) {
	videos := &stubVideos{status: download.Status{Exists: true, Dest: "a/b.mp4"}}
	stats := &stubStats{stats: retention.TreeStats{TotalFiles: 3, TotalBytes: 30}}
	svc := api.New(&stubParser{}, videos, &stubSubs{}, stats)

	status, err := svc.DownloadStatus(context.Background(), videoid.Identity{Platform: videoid.PlatformYouTube, ID: "dQw4w9WgXcQ"}, "137")
	if err != nil {
		t.Fatalf("DownloadStatus: %v", err)
	}
	if !status.Exists {
		t.Fatalf("status = %+v", status)
	}

	tree, err := svc.StorageStats(context.Background())
	if err != nil {
		t.Fatalf("StorageStats: %v", err)
	}
	if tree.TotalFiles != 3 {
		t.Fatalf("stats = %+v", tree)
	}
}
