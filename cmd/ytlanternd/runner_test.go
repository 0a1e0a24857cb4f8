package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ytlantern/internal/logging"
	"ytlantern/internal/testsupport"
)

func TestLockPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	expected := filepath.Join(cfg.Paths.LogDir, "ytlanternd.lock")
	if got := lockPath(cfg); got != expected {
		t.Fatalf("expected lock path %q, got %q", expected, got)
	}

	if got := lockPath(nil); got != "ytlanternd.lock" {
		t.Fatalf("expected fallback lock path, got %q", got)
	}
}

func TestRunnerRunStopsOnCancel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	runner, err := newRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunnerRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	first, err := newRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	ok, err := first.lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("prime lock: ok=%v err=%v", ok, err)
	}
	defer first.lock.Unlock() //nolint:errcheck

	second, err := newRunner(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("newRunner: %v", err)
	}
	err = second.Run(context.Background())
	if err == nil {
		t.Fatal("expected second instance to be rejected")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}
}
