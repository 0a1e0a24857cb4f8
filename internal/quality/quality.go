// Package quality maps raw technical stream attributes to human-readable
// quality labels. Both classifiers are total functions: quality display is
// advisory, so they always return a value and never fail.
package quality

import "strings"

// VideoQuality pairs the short quality tag with its marketing-style labels.
type VideoQuality struct {
	Quality  string
	Standard string
	Display  string
}

type videoTier struct {
	height   int
	tokens   []string
	quality  string
	standard string
}

var videoTiers = []videoTier{
	{2160, []string{"4k", "2160"}, "2160p", "4K Ultra HD"},
	{1440, []string{"1440"}, "1440p", "2K Quad HD"},
	{1080, []string{"1080"}, "1080p", "Full HD"},
	{720, []string{"720"}, "720p", "HD"},
	{480, []string{"480"}, "480p", "SD"},
	{360, []string{"360"}, "360p", "Low"},
	{240, nil, "240p", "Very Low"},
	{144, nil, "144p", "Very Low"},
}

// ClassifyVideo resolves a quality label from the pixel height, falling back
// to token search in the free-text format note when the height is absent.
func ClassifyVideo(height int, note string) VideoQuality {
	if height > 0 {
		for _, tier := range videoTiers {
			if height >= tier.height {
				return VideoQuality{Quality: tier.quality, Standard: tier.standard, Display: tier.quality + " " + tier.standard}
			}
		}
		return VideoQuality{Quality: "144p", Standard: "Very Low", Display: "144p Very Low"}
	}

	lowered := strings.ToLower(note)
	for _, tier := range videoTiers {
		for _, token := range tier.tokens {
			if strings.Contains(lowered, token) {
				return VideoQuality{Quality: tier.quality, Standard: tier.standard, Display: tier.quality + " " + tier.standard}
			}
		}
	}

	display := strings.TrimSpace(note)
	if display == "" {
		display = "Unknown"
	}
	return VideoQuality{Quality: "unknown", Standard: "Unknown", Display: display}
}

// ClassifyAudio resolves an audio quality label from the average bitrate in
// kbps. Bitrates below 96 kbps (or absent) report as Unknown.
func ClassifyAudio(bitrateKbps float64) string {
	switch {
	case bitrateKbps >= 320:
		return "High (320kbps+)"
	case bitrateKbps >= 192:
		return "Medium (192kbps+)"
	case bitrateKbps >= 128:
		return "Standard (128kbps+)"
	case bitrateKbps >= 96:
		return "Low (96kbps+)"
	default:
		return "Unknown"
	}
}
