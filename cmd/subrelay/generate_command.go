package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subrelay/internal/language"
	"subrelay/internal/services"
	"subrelay/internal/subtitles"
	"subrelay/internal/transcriptcache"
	"subrelay/internal/translation"
)

type generateOptions struct {
	languages         []string
	device            string
	model             string
	outputDir         string
	baseName          string
	keepIntermediates bool
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate <input>",
		Short: "Generate subtitle files for a media, transcript or SRT input",
		Long: `Generate subtitle files for one input.

Audio and video inputs are transcribed first; .json transcripts and .srt files
are decoded directly. The decoded text is written once per script variant and
once per configured target language, relaying through the pivot language.

Outputs are named <base>_<suffix>.srt next to the input unless --output-dir is
set. The command exits non-zero when any branch fails, after printing the
result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			var svcOpts []subtitles.ServiceOption
			if cfg.Cache.TranscriptsEnabled {
				store, err := transcriptcache.Open(cfg.TranscriptCachePath())
				if err != nil {
					return fmt.Errorf("open transcript cache: %w", err)
				}
				defer store.Close()
				svcOpts = append(svcOpts, subtitles.WithTranscriptStore(store))
			}

			svc, err := subtitles.NewService(cfg, logger, svcOpts...)
			if err != nil {
				return err
			}
			result, err := svc.Generate(cmd.Context(), subtitles.GenerateRequest{
				InputPath:         args[0],
				OutputDir:         strings.TrimSpace(opts.outputDir),
				BaseName:          strings.TrimSpace(opts.baseName),
				Languages:         language.NormalizeList(opts.languages),
				Model:             opts.model,
				Device:            opts.device,
				KeepIntermediates: opts.keepIntermediates,
			})
			if err != nil {
				return err
			}

			if ctx.JSONMode() {
				if err := writeJSON(cmd, newGenerateOutput(result)); err != nil {
					return err
				}
			} else {
				printGenerateResult(cmd, result)
			}

			if failed := result.FailedBranches(); len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, b := range failed {
					names = append(names, b.Name)
				}
				return fmt.Errorf("%d of %d subtitle branches failed: %s",
					len(failed), len(result.Branches), strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.languages, "languages", "l", nil, "Comma separated target language codes (default: all configured)")
	cmd.Flags().StringVar(&opts.device, "device", "", "Transcriber device override (e.g. mps, 0)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Transcriber model override")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for subtitle files (default: next to the input)")
	cmd.Flags().StringVar(&opts.baseName, "name", "", "Base name for subtitle files (default: input file name)")
	cmd.Flags().BoolVar(&opts.keepIntermediates, "keep-intermediates", false, "Keep extracted audio and raw transcript files")
	return cmd
}

type branchOutput struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Language     string `json:"language"`
	Path         string `json:"path,omitempty"`
	Chunks       int    `json:"chunks"`
	FailedChunks int    `json:"failed_chunks"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
}

type generateOutput struct {
	RunID            string            `json:"run_id"`
	Input            string            `json:"input"`
	InputKind        string            `json:"input_kind"`
	OutputDir        string            `json:"output_dir"`
	Chunks           int               `json:"chunks"`
	MediaDuration    float64           `json:"media_duration_seconds,omitempty"`
	TranscriptCached bool              `json:"transcript_cached"`
	DurationSeconds  float64           `json:"duration_seconds"`
	Paths            map[string]string `json:"paths"`
	Branches         []branchOutput    `json:"branches"`
	Intermediates    []string          `json:"intermediates,omitempty"`
}

func newGenerateOutput(result subtitles.GenerateResult) generateOutput {
	out := generateOutput{
		RunID:            result.RunID,
		Input:            result.InputPath,
		InputKind:        string(result.InputKind),
		OutputDir:        result.OutputDir,
		Chunks:           result.ChunkCount,
		MediaDuration:    result.MediaDuration,
		TranscriptCached: result.TranscriptCached,
		DurationSeconds:  result.Duration.Seconds(),
		Paths:            result.Paths,
		Branches:         make([]branchOutput, 0, len(result.Branches)),
		Intermediates:    result.Intermediates,
	}
	for _, b := range result.Branches {
		_, status := branchStatus(b, result.InputPath)
		entry := branchOutput{
			Name:         b.Name,
			Kind:         string(b.Kind),
			Language:     b.Language,
			Path:         b.Path,
			Chunks:       b.Chunks,
			FailedChunks: b.FailedChunks,
			Status:       status,
		}
		if b.Err != nil {
			entry.Error = b.Err.Error()
			entry.ErrorKind = errorKind(b.Err)
		}
		out.Branches = append(out.Branches, entry)
	}
	return out
}

func printGenerateResult(cmd *cobra.Command, result subtitles.GenerateResult) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	for _, line := range renderSectionHeader("Subtitles", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Input:       %s (%s)\n", result.InputPath, result.InputKind)
	fmt.Fprintf(out, "Output dir:  %s\n", result.OutputDir)
	fmt.Fprintf(out, "Chunks:      %d\n", result.ChunkCount)
	if result.InputKind.NeedsTranscription() {
		fmt.Fprintf(out, "Cached:      %s\n", yesNo(result.TranscriptCached))
	}
	if result.MediaDuration > 0 {
		fmt.Fprintf(out, "Media:       %s\n", (time.Duration(result.MediaDuration * float64(time.Second))).Truncate(time.Second))
	}
	fmt.Fprintf(out, "Elapsed:     %s\n\n", result.Duration.Truncate(time.Millisecond))

	rows := make([][]string, 0, len(result.Branches))
	for _, b := range result.Branches {
		kind, status := branchStatus(b, result.InputPath)
		path := b.Path
		if b.Err != nil {
			path = b.Err.Error()
		}
		rows = append(rows, []string{
			b.Name,
			b.Language,
			strconv.Itoa(b.Chunks),
			strconv.Itoa(b.FailedChunks),
			paint(kind, status, colorize),
			path,
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"Branch", "Language", "Chunks", "Failed", "Status", "Path"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))

	if len(result.Intermediates) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Intermediates kept:")
		for _, path := range result.Intermediates {
			fmt.Fprintf(out, "  %s\n", path)
		}
	}
}

func branchStatus(b subtitles.BranchResult, input string) (statusKind, string) {
	switch {
	case b.Err != nil:
		return statusError, "failed"
	case b.Path != "" && b.Path == input:
		return statusWarn, "kept input"
	case b.FailedChunks > 0:
		return statusWarn, "partial"
	case b.Chunks == 0:
		return statusWarn, "empty"
	default:
		return statusOK, "written"
	}
}

func errorKind(err error) string {
	var unsupported *translation.UnsupportedLanguageError
	if errors.As(err, &unsupported) {
		return "unsupported_language"
	}
	var translationErr *translation.TranslationError
	if errors.As(err, &translationErr) {
		return "translation"
	}
	var ioErr *subtitles.IOError
	if errors.As(err, &ioErr) {
		return "io"
	}
	return services.Category(err)
}
