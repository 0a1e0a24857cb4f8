package subtitles_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ytlantern/internal/services"
	"ytlantern/internal/services/ytdlp"
	"ytlantern/internal/storage"
	"ytlantern/internal/subtitles"
	"ytlantern/internal/videoid"
)

type stubFetchClient struct {
	requests []ytdlp.SubtitleRequest
	files    map[string]string
	err      error
}

func (s *stubFetchClient) FetchSubtitle(_ context.Context, req ytdlp.SubtitleRequest) (ytdlp.Result, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return ytdlp.Result{}, s.err
	}
	for name, content := range s.files {
		if err := os.WriteFile(filepath.Join(req.WorkDir, name), []byte(content), 0o644); err != nil {
			return ytdlp.Result{}, err
		}
	}
	return ytdlp.Result{}, nil
}

type stubConverter struct {
	calls [][2]string
	err   error
}

func (s *stubConverter) Convert(_ context.Context, src, dst string) error {
	s.calls = append(s.calls, [2]string{src, dst})
	if s.err != nil {
		return s.err
	}
	payload, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, append([]byte("converted:"), payload...), 0o644)
}

func newTestDownloader(t *testing.T, tool *stubFetchClient, conv *stubConverter) *subtitles.Downloader {
	t.Helper()
	layout, err := storage.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("NewLayout: %v", err)
	}
	return subtitles.NewDownloader(tool, conv, layout, nil)
}

func youtubeIdentity() videoid.Identity {
	return videoid.Identity{Platform: videoid.PlatformYouTube, ID: "dQw4w9WgXcQ"}
}

func TestFetchNativeContainerSkipsConversion(t *testing.T) {
	tool := &stubFetchClient{files: map[string]string{
		"dQw4w9WgXcQ.en.vtt":    "WEBVTT\n",
		"dQw4w9WgXcQ.info.json": `{"title": "Never Gonna"}`,
	}}
	conv := &stubConverter{}
	dl := newTestDownloader(t, tool, conv)

	track, err := dl.Fetch(context.Background(), subtitles.Request{
		Identity:  youtubeIdentity(),
		Language:  "en",
		Container: "vtt",
		Origin:    subtitles.OriginNative,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(conv.calls) != 0 {
		t.Fatalf("converter invoked %d times, want 0", len(conv.calls))
	}
	if track.Title != "Never Gonna" {
		t.Fatalf("title = %q", track.Title)
	}
	if track.Filename != "dQw4w9WgXcQ.en.vtt" {
		t.Fatalf("filename = %q", track.Filename)
	}
	if string(track.Content) != "WEBVTT\n" {
		t.Fatalf("content = %q", track.Content)
	}
}

func TestFetchConvertsWhenContainerDiffers(t *testing.T) {
	tool := &stubFetchClient{files: map[string]string{
		"dQw4w9WgXcQ.en.vtt": "WEBVTT\n",
	}}
	conv := &stubConverter{}
	dl := newTestDownloader(t, tool, conv)

	track, err := dl.Fetch(context.Background(), subtitles.Request{
		Identity:  youtubeIdentity(),
		Language:  "en",
		Container: ".srt",
		Origin:    subtitles.OriginNative,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(conv.calls) != 1 {
		t.Fatalf("converter invoked %d times, want 1", len(conv.calls))
	}
	if track.Filename != "dQw4w9WgXcQ.en.srt" {
		t.Fatalf("filename = %q", track.Filename)
	}
	if string(track.Content) != "converted:WEBVTT\n" {
		t.Fatalf("content = %q", track.Content)
	}
	// Sidecar was missing, so the title defaults to the raw identifier.
	if track.Title != "dQw4w9WgXcQ" {
		t.Fatalf("title = %q", track.Title)
	}
}

func TestFetchConversionFailureFallsBackToNative(t *testing.T) {
	tool := &stubFetchClient{files: map[string]string{
		"dQw4w9WgXcQ.en.vtt": "WEBVTT\n",
	}}
	conv := &stubConverter{err: errors.New("unsupported codec")}
	dl := newTestDownloader(t, tool, conv)

	track, err := dl.Fetch(context.Background(), subtitles.Request{
		Identity:  youtubeIdentity(),
		Language:  "en",
		Container: "srt",
		Origin:    subtitles.OriginNative,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if track.Filename != "dQw4w9WgXcQ.en.vtt" {
		t.Fatalf("filename = %q, want native fallback", track.Filename)
	}
	if string(track.Content) != "WEBVTT\n" {
		t.Fatalf("content = %q", track.Content)
	}
}

func TestFetchAutoModeFlag(t *testing.T) {
	tool := &stubFetchClient{files: map[string]string{
		"dQw4w9WgXcQ.en.vtt": "WEBVTT\n",
	}}
	dl := newTestDownloader(t, tool, &stubConverter{})

	_, err := dl.Fetch(context.Background(), subtitles.Request{
		Identity:  youtubeIdentity(),
		Language:  "en",
		Container: "vtt",
		Origin:    subtitles.OriginAuto,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(tool.requests) != 1 || !tool.requests[0].Auto {
		t.Fatalf("requests = %+v, want auto mode", tool.requests)
	}
}

func TestFetchValidationRejectsBeforeSubprocess(t *testing.T) {
	tests := []struct {
		name string
		req  subtitles.Request
	}{
		{
			name: "short id",
			req: subtitles.Request{
				Identity:  videoid.Identity{Platform: videoid.PlatformYouTube, ID: "short"},
				Language:  "en",
				Container: "vtt",
				Origin:    subtitles.OriginNative,
			},
		},
		{
			name: "bad container",
			req: subtitles.Request{
				Identity:  youtubeIdentity(),
				Language:  "en",
				Container: ".exe",
				Origin:    subtitles.OriginNative,
			},
		},
		{
			name: "bad origin",
			req: subtitles.Request{
				Identity:  youtubeIdentity(),
				Language:  "en",
				Container: "vtt",
				Origin:    subtitles.Origin("machine"),
			},
		},
		{
			name: "numeric locale",
			req: subtitles.Request{
				Identity:  youtubeIdentity(),
				Language:  "123",
				Container: "vtt",
				Origin:    subtitles.OriginNative,
			},
		},
		{
			name: "bad part",
			req: subtitles.Request{
				Identity:  videoid.Identity{Platform: videoid.PlatformBilibili, ID: "BV1xx411c7mD", Part: "abc"},
				Language:  "en",
				Container: "srt",
				Origin:    subtitles.OriginNative,
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tool := &stubFetchClient{}
			dl := newTestDownloader(t, tool, &stubConverter{})
			_, err := dl.Fetch(context.Background(), tc.req)
			if !errors.Is(err, services.ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
			if len(tool.requests) != 0 {
				t.Fatal("tool must not be invoked on validation failure")
			}
		})
	}
}

func TestFetchDanmakuUsesXML(t *testing.T) {
	tool := &stubFetchClient{files: map[string]string{
		"BV1xx411c7mD.danmaku.xml": "<i></i>",
	}}
	conv := &stubConverter{}
	dl := newTestDownloader(t, tool, conv)

	track, err := dl.Fetch(context.Background(), subtitles.Request{
		Identity:  videoid.Identity{Platform: videoid.PlatformBilibili, ID: "BV1xx411c7mD"},
		Language:  subtitles.DanmakuLanguage,
		Container: "xml",
		Origin:    subtitles.OriginNative,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(conv.calls) != 0 {
		t.Fatal("xml danmaku must not be converted")
	}
	if track.Filename != "BV1xx411c7mD.danmaku.xml" {
		t.Fatalf("filename = %q", track.Filename)
	}
}

func TestFetchToolFailure(t *testing.T) {
	tool := &stubFetchClient{err: errors.New("exit status 1")}
	dl := newTestDownloader(t, tool, &stubConverter{})

	_, err := dl.Fetch(context.Background(), subtitles.Request{
		Identity:  youtubeIdentity(),
		Language:  "en",
		Container: "vtt",
		Origin:    subtitles.OriginNative,
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want ErrExternalTool", err)
	}
}
