package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ytlantern/internal/mediainfo"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult() *mediainfo.ParseResult {
	return &mediainfo.ParseResult{
		Platform: "youtube",
		VideoID:  "dQw4w9WgXcQ",
		Title:    "Test Video",
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := Key("https://youtu.be/dQw4w9WgXcQ", "youtube")

	if got, err := store.Get(ctx, key); err != nil || got != nil {
		t.Fatalf("expected miss, got %v err %v", got, err)
	}

	if err := store.Put(ctx, key, sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.Title != "Test Video" {
		t.Fatalf("got = %+v", got)
	}
}

func TestExpiredEntryIsAMiss(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := Key("https://youtu.be/dQw4w9WgXcQ", "youtube")

	if err := store.Put(ctx, key, sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	got, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected expired miss, got %+v", got)
	}

	// The expired row was dropped on read.
	store.now = time.Now
	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Entries != 0 {
		t.Fatalf("entries = %d, want 0", stats.Entries)
	}
}

func TestGetByVideoID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, Key("url-a", "youtube"), sampleResult()); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.GetByVideoID(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetByVideoID: %v", err)
	}
	if got == nil || got.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("got = %+v", got)
	}

	if got, _ := store.GetByVideoID(ctx, "other"); got != nil {
		t.Fatalf("expected miss for unknown id, got %+v", got)
	}
}

func TestClearAndStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, url := range []string{"url-a", "url-b"} {
		if err := store.Put(ctx, Key(url, "youtube"), sampleResult()); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Entries != 2 {
		t.Fatalf("entries = %d, want 2", stats.Entries)
	}

	dropped, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
}

func TestKeyIsStable(t *testing.T) {
	a := Key("https://youtu.be/x", "youtube")
	b := Key("https://youtu.be/x", "youtube")
	c := Key("https://youtu.be/x", "bilibili")
	if a != b {
		t.Fatal("same input must produce the same key")
	}
	if a == c {
		t.Fatal("platform must participate in the key")
	}
}
