package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subrelay/internal/config"
	"subrelay/internal/transcriptcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear the transcript cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

type cacheEntryOutput struct {
	MediaHash  string    `json:"media_hash"`
	Model      string    `json:"model"`
	Device     string    `json:"device"`
	SourcePath string    `json:"source_path,omitempty"`
	Chunks     int       `json:"chunks"`
	Language   string    `json:"language,omitempty"`
	CachedAt   time.Time `json:"cached_at"`
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var entries []transcriptcache.Entry
			err = withTranscriptCache(cfg, func(store *transcriptcache.Store) error {
				var listErr error
				entries, listErr = store.List(cmd.Context())
				return listErr
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				view := make([]cacheEntryOutput, 0, len(entries))
				for _, entry := range entries {
					view = append(view, cacheEntryOutput{
						MediaHash:  entry.MediaHash,
						Model:      entry.Model,
						Device:     entry.Device,
						SourcePath: entry.SourcePath,
						Chunks:     entry.ChunkCount,
						Language:   entry.Language,
						CachedAt:   entry.CachedAt,
					})
				}
				return writeJSON(cmd, map[string]any{
					"path":    cfg.TranscriptCachePath(),
					"enabled": cfg.Cache.TranscriptsEnabled,
					"entries": view,
				})
			}

			out := cmd.OutOrStdout()
			if !cfg.Cache.TranscriptsEnabled {
				fmt.Fprintln(out, "Transcript cache is disabled (cache.transcripts_enabled = false)")
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No cached transcripts")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					shortHash(entry.MediaHash),
					entry.Model,
					entry.Device,
					strconv.Itoa(entry.ChunkCount),
					entry.Language,
					formatDuration(time.Since(entry.CachedAt)),
					entry.SourcePath,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Hash", "Model", "Device", "Chunks", "Lang", "Age", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "\nTotal: %d transcripts in %s\n", len(entries), cfg.TranscriptCachePath())
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var hash string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var removed int64
			err = withTranscriptCache(cfg, func(store *transcriptcache.Store) error {
				var clearErr error
				if hash = strings.TrimSpace(hash); hash != "" {
					removed, clearErr = store.Remove(cmd.Context(), hash)
				} else {
					removed, clearErr = store.Clear(cmd.Context())
				}
				return clearErr
			})
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{"removed": removed})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached transcripts\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&hash, "hash", "", "Only remove entries for this media hash")
	return cmd
}

// withTranscriptCache opens the cache for fn. A cache file that was never
// created is treated as empty and left absent.
func withTranscriptCache(cfg *config.Config, fn func(*transcriptcache.Store) error) error {
	path := cfg.TranscriptCachePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	store, err := transcriptcache.Open(path)
	if err != nil {
		return fmt.Errorf("open transcript cache: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
