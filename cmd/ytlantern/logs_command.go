package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ytlantern/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the service log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return fmt.Errorf("configuration not loaded")
			}
			path := filepath.Join(cfg.Paths.LogDir, "ytlantern.log")
			return logs.Tail(cmd.Context(), cmd.OutOrStdout(), path, logs.Options{
				Lines:  lines,
				Follow: follow,
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep the log open and print new lines")
	return cmd
}
