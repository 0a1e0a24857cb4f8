package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ytlantern/internal/download"
	"ytlantern/internal/videoid"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var formatSpec string
	var recodeTarget string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video in the requested format",
		Long: "Download a video. The format is a single stream id or an " +
			"audio and video pair joined with \"x\" (for example 137x140), " +
			"which is merged into a single mp4.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			identity, err := videoid.Resolve(args[0])
			if err != nil {
				return err
			}
			req := download.Request{
				Identity:     identity,
				FormatSpec:   formatSpec,
				RecodeTarget: recodeTarget,
				Merge:        strings.Contains(formatSpec, "x"),
			}
			job, err := svc.DownloadVideo(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, job)
			}

			out := cmd.OutOrStdout()
			if job.DownloadSucceed {
				fmt.Fprintf(out, "Downloaded to %s\n", job.Dest)
				if job.InfoPath != "" {
					fmt.Fprintf(out, "Metadata at  %s\n", job.InfoPath)
				}
				return nil
			}
			fmt.Fprintf(out, "Download failed: %s\n", job.Cause)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatSpec, "format", "f", "", "Format id or audio/video merge pair (required)")
	cmd.Flags().StringVar(&recodeTarget, "recode", "", "Recode the result into this container")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var formatSpec string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status <url>",
		Short: "Check whether a download already exists on disk",
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
			status, err := svc.DownloadStatus(cmd.Context(), identity, formatSpec)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			if status.Exists {
				fmt.Fprintf(out, "Present at %s\n", status.Dest)
			} else {
				fmt.Fprintln(out, "Not downloaded")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatSpec, "format", "f", "", "Format id or merge pair to check (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of text")
	_ = cmd.MarkFlagRequired("format")
	return cmd
}
