package subtitles

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"subrelay/internal/logging"
	"subrelay/internal/notifications"
	"subrelay/internal/services"
)

// Pipeline stages, in execution order.
const (
	StageInit            = "init"
	StageTranscribe      = "transcribe"
	StageDecode          = "decode"
	StageConvertVariants = "convert_variants"
	StageTranslateFanout = "translate_fanout"
	StageEncodeAll       = "encode_all"
	StageCleanup         = "cleanup"
)

// GenerateRequest describes the inputs for one run.
type GenerateRequest struct {
	InputPath string
	// OutputDir defaults to the input's directory.
	OutputDir string
	// BaseName defaults to the input file name without extension.
	BaseName string
	// Languages restricts the configured target languages. Empty means all.
	Languages []string
	// Model and Device override the configured transcriber settings.
	Model             string
	Device            string
	KeepIntermediates bool
}

// BranchKind separates script variants from translated languages.
type BranchKind string

const (
	BranchVariant  BranchKind = "variant"
	BranchLanguage BranchKind = "language"
)

// BranchResult reports one output branch.
type BranchResult struct {
	Name         string
	Kind         BranchKind
	Language     string
	Path         string
	Chunks       int
	FailedChunks int
	Err          error
}

// Failed reports whether the branch produced no output.
func (b BranchResult) Failed() bool { return b.Err != nil }

// GenerateResult reports the outputs of a run. Paths maps branch names to the
// files written; failed branches appear only in Branches.
type GenerateResult struct {
	RunID            string
	InputPath        string
	InputKind        InputKind
	OutputDir        string
	Paths            map[string]string
	Branches         []BranchResult
	ChunkCount       int
	MediaDuration    float64
	TranscriptCached bool
	Intermediates    []string
	Duration         time.Duration
}

// FailedBranches returns the branches that produced no output.
func (r GenerateResult) FailedBranches() []BranchResult {
	var failed []BranchResult
	for _, b := range r.Branches {
		if b.Failed() {
			failed = append(failed, b)
		}
	}
	return failed
}

// Generate runs the pipeline for one input. A returned error means no output
// was written; branch level failures are reported in the result instead.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	start := s.now()
	runID := s.newRunID()
	ctx = services.WithRunID(ctx, runID)

	r := &run{
		svc: s,
		req: req,
		result: GenerateResult{
			RunID: runID,
			Paths: make(map[string]string),
		},
	}
	logger := logging.WithContext(ctx, s.logger)
	logger.Info("subtitle run started",
		logging.String("input", req.InputPath),
		logging.Strings("languages", req.Languages),
		logging.String(logging.FieldEventType, "run_start"),
	)

	err := r.execute(ctx)
	r.cleanup(ctx)
	r.collect()

	finished := s.now()
	r.result.Duration = finished.Sub(start)
	s.metrics.RunFinished(err, finished)
	s.flushMetrics(logger)
	s.notify(ctx, logger, r.result, err)

	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("subtitle run cancelled", logging.String(logging.FieldEventType, "run_cancelled"))
		} else {
			logging.ErrorWithContext(logger, "subtitle run failed", "run_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, errorHint(err)),
			)
		}
		return r.result, err
	}

	attrs := []logging.Attr{
		logging.Int("branches", len(r.result.Branches)),
		logging.Int("written", len(r.result.Paths)),
		logging.Int("chunks", r.result.ChunkCount),
		logging.Duration("elapsed", r.result.Duration),
	}
	if failed := r.result.FailedBranches(); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, b := range failed {
			names = append(names, b.Name)
		}
		attrs = append(attrs,
			logging.Strings("failed_branches", names),
			logging.String(logging.FieldImpact, "some subtitle files were not written"),
		)
		logging.WarnWithContext(logger, "subtitle run completed with failed branches", "run_partial", attrs...)
	} else {
		attrs = append(attrs, logging.String(logging.FieldEventType, "run_complete"))
		logger.Info("subtitle run completed", logging.Args(attrs...)...)
	}
	return r.result, nil
}

func (r *run) execute(ctx context.Context) error {
	if err := r.stage(ctx, StageInit, r.init); err != nil {
		return err
	}
	if r.kind.NeedsTranscription() {
		if err := r.stage(ctx, StageTranscribe, r.transcribe); err != nil {
			return err
		}
	}
	steps := []struct {
		name string
		fn   func(context.Context, *slog.Logger) error
	}{
		{StageDecode, r.decode},
		{StageConvertVariants, r.convertVariants},
		{StageTranslateFanout, r.translateFanout},
		{StageEncodeAll, r.encodeAll},
	}
	for _, step := range steps {
		if err := r.stage(ctx, step.name, step.fn); err != nil {
			return err
		}
	}
	return nil
}

// stage runs fn with the stage recorded on the context and logs its timing.
func (r *run) stage(ctx context.Context, name string, fn func(context.Context, *slog.Logger) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx = services.WithStage(ctx, name)
	logger := logging.WithContext(ctx, r.svc.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	start := time.Now()
	err := fn(ctx, logger)
	elapsed := time.Since(start)
	r.svc.metrics.ObserveStage(name, elapsed)
	if err != nil {
		return err
	}
	logger.Debug("stage completed",
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldEventType, "stage_complete"),
	)
	return nil
}

func (s *Service) flushMetrics(logger *slog.Logger) {
	path := s.config.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := s.metrics.WriteTextfile(path); err != nil {
		logging.WarnWithContext(logger, "failed to write metrics textfile", "metrics_write_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.textfile_path permissions"),
			logging.String(logging.FieldImpact, "run metrics not exported"),
		)
	}
}

// notify announces the run outcome. Cancelled runs stay quiet.
func (s *Service) notify(ctx context.Context, logger *slog.Logger, result GenerateResult, runErr error) {
	var err error
	switch {
	case errors.Is(runErr, context.Canceled):
		return
	case runErr != nil:
		err = s.notifier.NotifyRunFailed(ctx, result.InputPath, runErr)
	default:
		summary := notifications.RunSummary{
			Input:    result.InputPath,
			Chunks:   result.ChunkCount,
			Duration: result.Duration,
		}
		for _, b := range result.Branches {
			if b.Failed() {
				summary.Failed = append(summary.Failed, b.Name)
			} else {
				summary.Written = append(summary.Written, b.Name)
			}
		}
		err = s.notifier.NotifyRunCompleted(ctx, summary)
	}
	if err != nil {
		logging.WarnWithContext(logger, "failed to send run notification", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run outcome not announced"),
		)
	}
}

func errorHint(err error) string {
	var ioErr *IOError
	switch {
	case errors.As(err, &ioErr):
		return "check the path exists and is accessible"
	case errors.Is(err, services.ErrNotFound):
		return "check the input path"
	case errors.Is(err, services.ErrConfiguration):
		return "run subrelay config validate"
	case errors.Is(err, services.ErrExternalTool), errors.Is(err, services.ErrTimeout):
		return "run subrelay check and inspect the tool output above"
	case errors.Is(err, services.ErrValidation):
		return "check the input file and flags"
	default:
		return "check logs for details"
	}
}
