package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"subrelay/internal/logging"
	"subrelay/internal/staging"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage run work directories",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List run work directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := cfg.WorkRoot()
			dirs, err := staging.ListDirectories(root)
			if err != nil {
				return fmt.Errorf("list work directories: %w", err)
			}
			var totalSize int64
			for _, dir := range dirs {
				totalSize += dir.Size
			}

			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"work_dir":         root,
					"directories":      orEmpty(dirs),
					"total_size_bytes": totalSize,
				})
			}

			out := cmd.OutOrStdout()
			if len(dirs) == 0 {
				fmt.Fprintln(out, "No work directories found")
				return nil
			}
			fmt.Fprintf(out, "Work directory: %s\n\n", root)
			rows := make([][]string, 0, len(dirs))
			for _, dir := range dirs {
				rows = append(rows, []string{
					dir.Name,
					formatDuration(time.Since(dir.ModTime)),
					logging.FormatBytes(dir.Size),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Run", "Age", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			fmt.Fprintf(out, "\nTotal: %d directories, %s\n", len(dirs), logging.FormatBytes(totalSize))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var cleanAll bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale run work directories",
		Long: `Remove run work directories left behind by interrupted runs.

By default only directories older than cache.stale_work_hours are removed.
Use --all to remove every work directory, including those of runs still in
progress.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			label := "stale"
			var result staging.CleanStaleResult
			if cleanAll {
				label = "work"
				result = staging.CleanAll(cmd.Context(), cfg.WorkRoot(), logger)
			} else {
				maxAge := time.Duration(cfg.Cache.StaleWorkHours) * time.Hour
				if maxAge <= 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Stale sweep disabled (cache.stale_work_hours = 0); use --all")
					return nil
				}
				result = staging.CleanStale(cmd.Context(), cfg.WorkRoot(), maxAge, logger)
			}

			if ctx.JSONMode() {
				errs := make([]string, 0, len(result.Errors))
				for _, e := range result.Errors {
					errs = append(errs, fmt.Sprintf("%s: %v", e.Path, e.Error))
				}
				return writeJSON(cmd, map[string]any{
					"removed": len(result.Removed),
					"errors":  errs,
				})
			}
			printStagingCleanResult(cmd, result, label)
			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanAll, "all", false, "Remove all work directories (including active runs)")
	return cmd
}

func printStagingCleanResult(cmd *cobra.Command, result staging.CleanStaleResult, label string) {
	out := cmd.OutOrStdout()
	switch {
	case len(result.Removed) == 0 && len(result.Errors) == 0:
		fmt.Fprintf(out, "No %s directories to clean\n", label)
	case len(result.Errors) > 0:
		fmt.Fprintf(out, "Removed %d %s directories, %d errors\n", len(result.Removed), label, len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
		}
	default:
		fmt.Fprintf(out, "Removed %d %s directories\n", len(result.Removed), label)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Minute)
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
