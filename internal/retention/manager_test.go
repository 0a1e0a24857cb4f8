package retention_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ytlantern/internal/retention"
)

func seedEntry(t *testing.T, root, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, "media.mp4"), []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(dir, stamp, stamp); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return dir
}

func newManager(t *testing.T, root string, usage float64) *retention.Manager {
	t.Helper()
	m, err := retention.NewManager(retention.Options{
		Root:         root,
		MaxAge:       24 * time.Hour,
		MaxDiskUsage: 90,
		DiskUsage:    func(string) (float64, error) { return usage, nil },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestSweepRemovesOnlyExpiredEntries(t *testing.T) {
	root := t.TempDir()
	old := seedEntry(t, root, "old", 48*time.Hour)
	fresh := seedEntry(t, root, "fresh", time.Hour)

	m := newManager(t, root, 10)
	result := m.Sweep(context.Background())

	if result.Purged {
		t.Fatal("unexpected purge")
	}
	if result.Removed != 1 {
		t.Fatalf("removed = %d, want 1", result.Removed)
	}
	if result.FreedBytes != 10 {
		t.Fatalf("freed = %d, want 10", result.FreedBytes)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatal("expired entry should be gone")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh entry should survive")
	}
}

func TestSweepSkipsRecentlyModifiedEntries(t *testing.T) {
	root := t.TempDir()
	dir := seedEntry(t, root, "inflight", 48*time.Hour)
	// A fresh write marks the entry as active even though it is past max-age.
	now := time.Now()
	if err := os.Chtimes(dir, now, now); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	m := newManager(t, root, 10)
	result := m.Sweep(context.Background())
	if result.Removed != 0 {
		t.Fatalf("removed = %d, want 0", result.Removed)
	}
}

func TestSweepPurgesUnderDiskPressure(t *testing.T) {
	root := t.TempDir()
	seedEntry(t, root, "old", 48*time.Hour)
	seedEntry(t, root, "fresh", time.Minute)

	m := newManager(t, root, 95)
	result := m.Sweep(context.Background())

	if !result.Purged {
		t.Fatal("expected purge")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("root should be recreated: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("root not empty after purge: %d entries", len(entries))
	}
	if result.Removed != 2 {
		t.Fatalf("removed = %d, want 2", result.Removed)
	}
}

func TestSweepMissingRoot(t *testing.T) {
	m := newManager(t, filepath.Join(t.TempDir(), "missing"), 10)
	result := m.Sweep(context.Background())
	if len(result.Errors) != 0 || result.Removed != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestStats(t *testing.T) {
	root := t.TempDir()
	seedEntry(t, root, "old", 48*time.Hour)
	seedEntry(t, root, "fresh", time.Minute)

	m := newManager(t, root, 42)
	stats, err := m.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalFiles != 2 {
		t.Fatalf("files = %d, want 2", stats.TotalFiles)
	}
	if stats.TotalBytes != 20 {
		t.Fatalf("bytes = %d, want 20", stats.TotalBytes)
	}
	if stats.ExpiredEntries != 1 {
		t.Fatalf("expired = %d, want 1", stats.ExpiredEntries)
	}
	if stats.DiskUsagePct != 42 {
		t.Fatalf("usage = %v", stats.DiskUsagePct)
	}

	// Stats never removes anything.
	entries, _ := os.ReadDir(root)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	m, err := retention.NewManager(retention.Options{
		Root:      t.TempDir(),
		Interval:  10 * time.Millisecond,
		DiskUsage: func(string) (float64, error) { return 0, nil },
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
