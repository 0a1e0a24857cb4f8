package download

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"ytlantern/internal/logging"
	"ytlantern/internal/services"
	"ytlantern/internal/services/ytdlp"
	"ytlantern/internal/storage"
	"ytlantern/internal/videoid"
)

// Request describes one video download.
type Request struct {
	Identity     videoid.Identity
	FormatSpec   string
	RecodeTarget string
	Merge        bool
}

// Job reports the outcome of a download request. A failed download is still
// a well-formed job, not an error: DownloadSucceed false plus a scraped
// cause lets the caller distinguish a broken service from a video that
// could not be fetched.
type Job struct {
	Identity        videoid.Identity `json:"-"`
	FormatSpec      string           `json:"format_spec"`
	DownloadSucceed bool             `json:"download_succeed"`
	Dest            string           `json:"dest"`
	InfoPath        string           `json:"info_path,omitempty"`
	Cause           string           `json:"cause,omitempty"`
}

// Status is the answer to a filesystem-only existence poll.
type Status struct {
	Exists       bool   `json:"exists"`
	Dest         string `json:"dest,omitempty"`
	MetadataPath string `json:"metadata_path,omitempty"`
}

const (
	destUnknown    = "unknown"
	mergeContainer = "mp4"
)

var (
	singleSpecPattern = regexp.MustCompile(`^[\w.-]+$`)
	mergeSpecPattern  = regexp.MustCompile(`^[\w.-]+x[\w.-]+$`)
)

// Validate runs the local pre-flight checks before any subprocess work.
func (r Request) Validate() error {
	if err := r.Identity.Validate(); err != nil {
		return err
	}
	spec := strings.TrimSpace(r.FormatSpec)
	if spec == "" {
		return services.Wrap(services.ErrInvalidArgument, "download", "validate", "format spec required", nil)
	}
	if r.Merge {
		if !mergeSpecPattern.MatchString(spec) || len(strings.SplitN(spec, "x", 2)) != 2 {
			return services.Wrap(services.ErrInvalidArgument, "download", "validate", fmt.Sprintf("malformed merge spec %q", spec), nil)
		}
		return nil
	}
	if !singleSpecPattern.MatchString(spec) {
		return services.Wrap(services.ErrInvalidArgument, "download", "validate", fmt.Sprintf("malformed format spec %q", spec), nil)
	}
	return nil
}

// toolSpec translates the user-facing x-separated merge notation into the
// tool's +-separated stream combination syntax.
func (r Request) toolSpec() string {
	spec := strings.TrimSpace(r.FormatSpec)
	if r.Merge {
		return strings.Replace(spec, "x", "+", 1)
	}
	return spec
}

// DownloadClient is the slice of the extraction tool the downloader needs.
type DownloadClient interface {
	Download(ctx context.Context, req ytdlp.DownloadRequest) (ytdlp.Result, error)
}

// Downloader runs media downloads into the shared storage tree.
type Downloader struct {
	tool   DownloadClient
	layout *storage.Layout
	logger *slog.Logger
}

// NewDownloader constructs a video downloader.
func NewDownloader(tool DownloadClient, layout *storage.Layout, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Downloader{tool: tool, layout: layout, logger: logger}
}

// Run executes one download request. Repeat requests with identical
// parameters target the same directory, so a completed download is reused
// without spawning the tool again.
func (d *Downloader) Run(ctx context.Context, req Request) (Job, error) {
	if err := req.Validate(); err != nil {
		return Job{}, err
	}

	job := Job{Identity: req.Identity, FormatSpec: req.FormatSpec, Dest: destUnknown}
	dir := d.layout.JobDir(req.Identity, req.FormatSpec)
	if err := d.layout.EnsureDir(dir); err != nil {
		return Job{}, err
	}

	// Completed downloads are addressed deterministically, so presence of
	// the media file short-circuits a repeat request.
	if status := d.statusForDir(dir, req.Identity.ID); status.Exists {
		job.DownloadSucceed = true
		job.Dest = status.Dest
		job.InfoPath = status.MetadataPath
		return job, nil
	}

	lease, err := storage.AcquireLease(dir)
	if errors.Is(err, storage.ErrLeaseHeld) {
		job.Cause = "download already in progress"
		return job, nil
	}
	if err != nil {
		return Job{}, err
	}
	defer lease.Release()

	toolReq := ytdlp.DownloadRequest{
		URL:            req.Identity.CanonicalURL(),
		FormatSpec:     req.toolSpec(),
		OutputTemplate: filepath.Join(dir, req.Identity.ID+".%(ext)s"),
		RecodeTarget:   req.RecodeTarget,
		WorkDir:        dir,
	}
	if req.Merge {
		toolReq.MergeContainer = mergeContainer
	}

	result, err := d.tool.Download(ctx, toolReq)
	if err != nil {
		job.Cause = failureCause(err, result.Stderr)
		d.logger.Warn("download failed",
			logging.String("video_id", req.Identity.ID),
			logging.String("format", req.FormatSpec),
			logging.String("cause", job.Cause),
		)
		return job, nil
	}

	job.DownloadSucceed = true
	if dest, ok := recoverOutputPath(result.Stdout, dir, req.Identity.ID); ok {
		job.Dest = d.relative(dest)
	}
	if info := d.statusForDir(dir, req.Identity.ID); info.MetadataPath != "" {
		job.InfoPath = info.MetadataPath
	}
	return job, nil
}

// GetStatus reports whether a previously requested download exists on disk.
// It never spawns a subprocess.
func (d *Downloader) GetStatus(identity videoid.Identity, formatSpec string) (Status, error) {
	req := Request{Identity: identity, FormatSpec: formatSpec, Merge: strings.Contains(formatSpec, "x")}
	if err := req.Validate(); err != nil {
		// A malformed spec may still have been issued without the merge
		// flag; retry validation as a single spec before rejecting.
		req.Merge = false
		if err := req.Validate(); err != nil {
			return Status{}, err
		}
	}
	dir := d.layout.JobDir(identity, formatSpec)
	return d.statusForDir(dir, identity.ID), nil
}

// statusForDir locates the finished media file and metadata sidecar in a
// job directory. Partial files and the lease file are not media.
func (d *Downloader) statusForDir(dir, id string) Status {
	media, info := findArtifacts(dir, id)
	status := Status{}
	if info != "" {
		status.MetadataPath = d.relative(info)
	}
	if media != "" {
		status.Exists = true
		status.Dest = d.relative(media)
	}
	return status
}

func (d *Downloader) relative(path string) string {
	rel, err := filepath.Rel(d.layout.Root(), path)
	if err != nil {
		return path
	}
	return rel
}

// recoverOutputPath scans tool stdout for a line mentioning a path inside
// the job directory, since the tool reports the merged filename only in its
// human-readable progress output.
func recoverOutputPath(stdout []byte, dir, id string) (string, bool) {
	pattern := regexp.MustCompile(regexp.QuoteMeta(filepath.Join(dir, id)) + `(?:\.[A-Za-z0-9]+)+`)
	scanner := bufio.NewScanner(strings.NewReader(string(stdout)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if match := pattern.FindString(line); match != "" && !strings.HasSuffix(match, ".part") && !strings.HasSuffix(match, ".ytdl") {
			return match, true
		}
	}
	return "", false
}

// failureCause distills tool failure output into a single diagnostic line.
func failureCause(err error, stderr []byte) string {
	if errors.Is(err, services.ErrTimeout) {
		return "download timed out"
	}
	scanner := bufio.NewScanner(strings.NewReader(string(stderr)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.Contains(line, "ERROR") {
			return line
		}
	}
	return "unknown error"
}
