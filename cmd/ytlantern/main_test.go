package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytlantern/internal/mediainfo"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("expected output to mention %q, got %q", target, stdout)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "storage_root") {
		t.Fatalf("sample config missing storage_root section: %q", string(data))
	}
}

func TestConfigInitRefusesExistingFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	_, _, err := runCLI(t, "config", "init", "--path", target)
	if err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestFormatTableMarksBestFormat(t *testing.T) {
	formats := []mediainfo.FormatDescriptor{
		{ID: "136", Container: "mp4", Display: "720p (HD)", BitrateKbps: 1200},
		{ID: "137", Container: "mp4", Display: "1080p (Full HD)", BitrateKbps: 4500},
	}

	var buf bytes.Buffer
	rendered := formatTable(&buf, formats, "137")

	lines := strings.Split(rendered, "\n")
	var bestLine string
	for _, line := range lines {
		if strings.Contains(line, "137") && !strings.Contains(line, "136") {
			bestLine = line
			break
		}
	}
	if bestLine == "" {
		t.Fatalf("no row for format 137 in %q", rendered)
	}
	if !strings.Contains(bestLine, "*") {
		t.Fatalf("best format row missing marker: %q", bestLine)
	}
	for _, line := range lines {
		if strings.Contains(line, "136") && strings.Contains(line, "*") {
			t.Fatalf("non-best row carries marker: %q", line)
		}
	}
}
