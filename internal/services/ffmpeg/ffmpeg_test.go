package ffmpeg_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ytlantern/internal/services"
	"ytlantern/internal/services/ffmpeg"
)

func TestConvertArgs(t *testing.T) {
	var gotBinary string
	var gotArgs []string
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithRunner(func(_ context.Context, binary string, args []string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return nil, nil
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := client.Convert(context.Background(), "in.vtt", "out.srt"); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if gotBinary != "ffmpeg" {
		t.Fatalf("binary = %q", gotBinary)
	}
	if got := strings.Join(gotArgs, " "); got != "-y -i in.vtt out.srt" {
		t.Fatalf("args = %q", got)
	}
}

func TestConvertFailureWrapsStderr(t *testing.T) {
	client, err := ffmpeg.New("ffmpeg", ffmpeg.WithRunner(func(context.Context, string, []string) ([]byte, error) {
		return []byte("Invalid data found when processing input\n"), errors.New("exit status 1")
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	convErr := client.Convert(context.Background(), "in.vtt", "out.srt")
	if !errors.Is(convErr, services.ErrConversion) {
		t.Fatalf("err = %v, want ErrConversion", convErr)
	}
	if !strings.Contains(convErr.Error(), "Invalid data found") {
		t.Fatalf("missing stderr detail in %v", convErr)
	}
}

func TestConvertValidatesPaths(t *testing.T) {
	client, err := ffmpeg.New("ffmpeg")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Convert(context.Background(), "", "out.srt"); !errors.Is(err, services.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := ffmpeg.New(" "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
