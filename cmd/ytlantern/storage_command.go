package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"

	"ytlantern/internal/retention"
)

func newStorageCommand(ctx *commandContext) *cobra.Command {
	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and maintain the download storage tree",
	}
	storageCmd.AddCommand(newStorageStatsCommand(ctx))
	storageCmd.AddCommand(newStorageSweepCommand(ctx))
	storageCmd.AddCommand(newStorageCacheCommand(ctx))
	return storageCmd
}

func newStorageCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the parse-result cache",
	}

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Report cache entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.parseCache()
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Parse cache is disabled")
				return nil
			}
			stats, err := store.GetStats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d (%d expired)\n", stats.Entries, stats.Expired)
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop all cached parse results",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.parseCache()
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Parse cache is disabled")
				return nil
			}
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries\n", removed)
			return nil
		},
	})

	return cacheCmd
}

func newStorageStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Report storage occupancy and disk utilization",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			stats, err := svc.StorageStats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}

			rows := [][]string{
				{"Files", fmt.Sprintf("%d", stats.TotalFiles)},
				{"Total size", humanize.IBytes(uint64(stats.TotalBytes))},
				{"Expired entries", fmt.Sprintf("%d", stats.ExpiredEntries)},
				{"Disk usage", fmt.Sprintf("%.1f%%", stats.DiskUsagePct)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				cmd.OutOrStdout(),
				[]string{"Metric", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newStorageSweepCommand(ctx *commandContext) *cobra.Command {
	var maxAge string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one retention sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.retentionManager()
			if err != nil {
				return err
			}
			if maxAge != "" {
				age, err := str2duration.ParseDuration(maxAge)
				if err != nil {
					return fmt.Errorf("parse --max-age %q: %w", maxAge, err)
				}
				cfg := ctx.configValue()
				manager, err = retention.NewManager(retention.Options{
					Root:         cfg.Paths.StorageRoot,
					MaxAge:       age,
					MaxDiskUsage: float64(cfg.Retention.MaxDiskUsagePercent),
					SkipWindow:   cfg.DownloadTimeout(),
				})
				if err != nil {
					return err
				}
			}
			result := manager.Sweep(cmd.Context())

			out := cmd.OutOrStdout()
			if result.Purged {
				fmt.Fprintln(out, "Disk pressure purge: storage tree cleared")
			}
			fmt.Fprintf(out, "Removed %d entries, freed %s\n",
				result.Removed, humanize.IBytes(uint64(result.FreedBytes)))
			for _, sweepErr := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to remove %s: %v\n", sweepErr.Path, sweepErr.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&maxAge, "max-age", "", "Override the entry age threshold for this sweep (e.g. 36h, 2d)")
	return cmd
}
