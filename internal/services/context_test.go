package services_test

import (
	"context"
	"testing"

	"ytlantern/internal/services"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := services.WithRequestID(context.Background(), "req-1")
	id, ok := services.RequestIDFromContext(ctx)
	if !ok || id != "req-1" {
		t.Fatalf("expected req-1, got %q ok=%v", id, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := context.Background()
	if services.WithRequestID(ctx, "") != ctx {
		t.Fatal("empty request ID should not allocate a new context")
	}
	if _, ok := services.VideoIDFromContext(ctx); ok {
		t.Fatal("expected no video ID on background context")
	}
	if _, ok := services.PlatformFromContext(ctx); ok {
		t.Fatal("expected no platform on background context")
	}
}

func TestVideoContextFields(t *testing.T) {
	ctx := services.WithVideoID(context.Background(), "dQw4w9WgXcQ")
	ctx = services.WithPlatform(ctx, "youtube")
	if id, ok := services.VideoIDFromContext(ctx); !ok || id != "dQw4w9WgXcQ" {
		t.Fatalf("video ID round trip failed: %q %v", id, ok)
	}
	if p, ok := services.PlatformFromContext(ctx); !ok || p != "youtube" {
		t.Fatalf("platform round trip failed: %q %v", p, ok)
	}
}
