package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"ytlantern/internal/subtitles"
	"ytlantern/internal/videoid"
)

func newSubtitleCommand(ctx *commandContext) *cobra.Command {
	var langFlag string
	var containerFlag string
	var autoFlag bool
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "subtitle <url>",
		Short: "Download one subtitle track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			identity, err := videoid.Resolve(args[0])
			if err != nil {
				return err
			}

			origin := subtitles.OriginNative
			if autoFlag {
				origin = subtitles.OriginAuto
			}
			track, err := svc.DownloadSubtitle(cmd.Context(), subtitles.Request{
				Identity:  identity,
				Language:  langFlag,
				Container: containerFlag,
				Origin:    origin,
			})
			if err != nil {
				return err
			}

			target := outputFlag
			if target == "" {
				target = track.Filename
			} else if info, err := os.Stat(target); err == nil && info.IsDir() {
				target = filepath.Join(target, track.Filename)
			}
			if err := os.WriteFile(target, track.Content, 0o644); err != nil {
				return fmt.Errorf("write subtitle: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title: %s\n", track.Title)
			fmt.Fprintf(out, "Saved: %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&langFlag, "lang", "l", "", "Language code, or danmaku (required)")
	cmd.Flags().StringVar(&containerFlag, "ext", "vtt", "Desired subtitle container")
	cmd.Flags().BoolVar(&autoFlag, "auto", false, "Fetch automatic captions instead of authored subtitles")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file or directory")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}
