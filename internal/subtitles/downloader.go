package subtitles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"ytlantern/internal/logging"
	"ytlantern/internal/services"
	"ytlantern/internal/services/ffmpeg"
	"ytlantern/internal/services/ytdlp"
	"ytlantern/internal/storage"
	"ytlantern/internal/videoid"
)

// Origin distinguishes officially authored tracks from machine captions.
type Origin string

const (
	OriginNative Origin = "native"
	OriginAuto   Origin = "auto"
)

// DanmakuLanguage is the pseudo-language for bilibili comment overlays.
const DanmakuLanguage = "danmaku"

// Request describes one subtitle fetch.
type Request struct {
	Identity  videoid.Identity
	Language  string
	Container string
	Origin    Origin
}

// Track is a fetched subtitle with its content carried inline so the HTTP
// boundary never exposes filesystem paths.
type Track struct {
	Title    string
	Filename string
	Content  []byte
}

// FetchClient is the slice of the extraction tool the downloader needs.
type FetchClient interface {
	FetchSubtitle(ctx context.Context, req ytdlp.SubtitleRequest) (ytdlp.Result, error)
}

// Downloader fetches subtitle tracks into the shared storage tree.
type Downloader struct {
	tool      FetchClient
	converter ffmpeg.Converter
	layout    *storage.Layout
	logger    *slog.Logger
}

// NewDownloader constructs a subtitle downloader.
func NewDownloader(tool FetchClient, converter ffmpeg.Converter, layout *storage.Layout, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{tool: tool, converter: converter, layout: layout, logger: logger}
}

var allowedContainers = map[string]struct{}{
	"srt":  {},
	"vtt":  {},
	"ass":  {},
	"json": {},
	"xml":  {},
}

// Validate runs every local check before any filesystem or subprocess work.
func (r Request) Validate() error {
	if err := r.Identity.Validate(); err != nil {
		return err
	}
	container := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(r.Container)), ".")
	if _, ok := allowedContainers[container]; !ok {
		return services.Wrap(services.ErrInvalidArgument, "subtitles", "validate", fmt.Sprintf("container %q not allowed", r.Container), nil)
	}
	if r.Origin != OriginNative && r.Origin != OriginAuto {
		return services.Wrap(services.ErrInvalidArgument, "subtitles", "validate", fmt.Sprintf("origin must be native or auto, got %q", r.Origin), nil)
	}
	if r.Language != DanmakuLanguage {
		if _, err := language.Parse(r.Language); err != nil {
			return services.Wrap(services.ErrInvalidArgument, "subtitles", "validate", fmt.Sprintf("malformed language code %q", r.Language), err)
		}
	}
	return nil
}

// normalizedContainer returns the desired extension without a leading dot.
func (r Request) normalizedContainer() string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(r.Container)), ".")
}

// nativeContainer is the extension the tool writes regardless of what the
// caller asked for.
func nativeContainer(id videoid.Identity, lang string) string {
	if lang == DanmakuLanguage {
		return "xml"
	}
	if id.Platform == videoid.PlatformBilibili {
		return "srt"
	}
	return "vtt"
}

// Fetch downloads one subtitle track. When the desired container differs
// from the tool's native one the transcoding tool converts it; a conversion
// failure falls back to the native file rather than failing the request.
func (d *Downloader) Fetch(ctx context.Context, req Request) (*Track, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	dir := d.layout.SubtitleDir(req.Identity, req.Language, string(req.Origin))
	if err := d.layout.EnsureDir(dir); err != nil {
		return nil, err
	}

	_, err := d.tool.FetchSubtitle(ctx, ytdlp.SubtitleRequest{
		URL:            req.Identity.CanonicalURL(),
		Language:       req.Language,
		Auto:           req.Origin == OriginAuto,
		OutputTemplate: req.Identity.ID + ".%(ext)s",
		WorkDir:        dir,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "subtitles", "fetch", "extraction tool failed", err)
	}

	native := nativeContainer(req.Identity, req.Language)
	nativePath, err := findSubtitleFile(dir, native)
	if err != nil {
		return nil, err
	}

	resultPath := nativePath
	desired := req.normalizedContainer()
	if desired != native {
		converted := strings.TrimSuffix(nativePath, filepath.Ext(nativePath)) + "." + desired
		if convErr := d.converter.Convert(ctx, nativePath, converted); convErr != nil {
			d.logger.Warn("subtitle conversion failed, returning native container",
				logging.String("native", nativePath),
				logging.String("target", desired),
				logging.Error(convErr),
			)
		} else {
			resultPath = converted
		}
	}

	content, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "subtitles", "read", fmt.Sprintf("read %s", resultPath), err)
	}

	return &Track{
		Title:    d.sidecarTitle(dir, req.Identity.ID),
		Filename: filepath.Base(resultPath),
		Content:  content,
	}, nil
}

// findSubtitleFile locates the freshly written subtitle in the job directory.
func findSubtitleFile(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", services.Wrap(services.ErrIO, "subtitles", "scan", fmt.Sprintf("read %s", dir), err)
	}
	suffix := "." + ext
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, suffix) && !strings.HasSuffix(name, ".info.json") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", services.Wrap(services.ErrIO, "subtitles", "scan", fmt.Sprintf("no %s subtitle written to %s", ext, dir), nil)
}

// sidecarTitle reads the title from the tool's metadata sidecar, defaulting
// to the raw identifier when the sidecar is missing or unparsable.
func (d *Downloader) sidecarTitle(dir, fallback string) string {
	sidecar := filepath.Join(dir, fallback+".info.json")
	payload, err := os.ReadFile(sidecar)
	if err != nil {
		return fallback
	}
	var meta struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(payload, &meta); err != nil || strings.TrimSpace(meta.Title) == "" {
		return fallback
	}
	return meta.Title
}
