package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"ytlantern/internal/mediainfo"
)

func newParseCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Resolve a video URL into metadata and available formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			result, err := svc.Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}
			renderParseResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

func renderParseResult(cmd *cobra.Command, result *mediainfo.ParseResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Title:    %s\n", result.Title)
	fmt.Fprintf(out, "Platform: %s\n", result.Platform)
	fmt.Fprintf(out, "Video ID: %s\n", result.VideoID)
	if result.Part != "" {
		fmt.Fprintf(out, "Part:     %s\n", result.Part)
	}
	fmt.Fprintf(out, "Uploader: %s\n", result.Uploader)
	fmt.Fprintf(out, "Duration: %s\n", result.DurationDisplay())
	if len(result.AvailableSubtitles) > 0 {
		fmt.Fprintf(out, "Subtitles: %s\n", strings.Join(result.AvailableSubtitles, ", "))
	}
	fmt.Fprintln(out)

	if len(result.AvailableVideo) > 0 {
		fmt.Fprintln(out, "Video formats:")
		fmt.Fprintln(out, formatTable(out, result.AvailableVideo, result.BestVideo.ID))
	}
	if len(result.AvailableAudio) > 0 {
		fmt.Fprintln(out, "Audio formats:")
		fmt.Fprintln(out, formatTable(out, result.AvailableAudio, result.BestAudio.ID))
	}
}

func formatTable(out io.Writer, formats []mediainfo.FormatDescriptor, bestID string) string {
	rows := make([][]string, 0, len(formats))
	for _, f := range formats {
		marker := ""
		if f.ID == bestID {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			f.ID,
			f.Container,
			f.Display,
			fmt.Sprintf("%.0f", f.BitrateKbps),
			f.SizeDisplay(),
		})
	}
	return renderTable(
		out,
		[]string{"", "ID", "Ext", "Quality", "kbps", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}
