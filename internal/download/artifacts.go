package download

import (
	"os"
	"path/filepath"
	"strings"
)

// findArtifacts returns the finished media file and the metadata sidecar in
// a job directory, either of which may be absent.
func findArtifacts(dir, id string) (media, info string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ""
	}
	prefix := id + "."
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		switch {
		case strings.HasSuffix(name, ".info.json"):
			info = filepath.Join(dir, name)
		case strings.HasSuffix(name, ".part"), strings.HasSuffix(name, ".ytdl"), strings.HasSuffix(name, ".lease"):
			// in-flight tool state, not a finished artifact
		default:
			if media == "" {
				media = filepath.Join(dir, name)
			}
		}
	}
	return media, info
}
