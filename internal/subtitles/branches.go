package subtitles

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"subrelay/internal/fileutil"
	"subrelay/internal/language"
	"subrelay/internal/logging"
	"subrelay/internal/metrics"
	"subrelay/internal/script"
	"subrelay/internal/services"
	"subrelay/internal/services/whisper"
	"subrelay/internal/subtitles/srt"
	"subrelay/internal/transcript"
	"subrelay/internal/transcriptcache"
	"subrelay/internal/translation"
)

// Detection below this confidence is too noisy to warn about.
const detectConfidenceThreshold = 0.8

func transcriberRequest(audio, output, model, device string) whisper.Request {
	return whisper.Request{AudioPath: audio, OutputPath: output, Model: model, Device: device}
}

func (r *run) decode(ctx context.Context, logger *slog.Logger) error {
	var (
		seq transcript.Sequence
		err error
	)
	switch r.kind {
	case InputLineFormat:
		data, readErr := os.ReadFile(r.input)
		if readErr != nil {
			return &IOError{Op: "read input", Path: r.input, Err: readErr}
		}
		seq, err = srt.DecodeLineFormat(data)
	case InputTranscript:
		data, readErr := os.ReadFile(r.input)
		if readErr != nil {
			return &IOError{Op: "read input", Path: r.input, Err: readErr}
		}
		seq, err = srt.DecodeTranscript(data)
	default:
		seq, err = srt.DecodeTranscript(r.payload)
	}
	if err != nil {
		if !errors.Is(err, srt.ErrNoChunks) {
			return err
		}
		logging.WarnWithContext(logger, "transcript contains no chunks", "transcript_no_chunks",
			logging.String("input", r.input),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the transcriber output or input file"),
			logging.String(logging.FieldImpact, "subtitle files will be empty"),
		)
	}
	r.seq = seq
	r.result.ChunkCount = seq.Len()

	detected := r.checkSourceLanguage(logger)
	logger.Info("transcript decoded",
		logging.Int("chunks", seq.Len()),
		logging.String(logging.FieldEventType, "transcript_decoded"),
	)

	if r.cacheKey != nil && !r.result.TranscriptCached && err == nil {
		entry := transcriptcache.Entry{
			Key:        *r.cacheKey,
			SourcePath: r.input,
			Payload:    r.payload,
			ChunkCount: seq.Len(),
			Language:   detected,
		}
		if putErr := r.svc.transcripts.Put(ctx, entry); putErr != nil {
			logging.WarnWithContext(logger, "failed to cache transcript", "transcript_cache_failed",
				logging.Error(putErr),
				logging.String(logging.FieldImpact, "next run transcribes again"),
			)
		}
	}
	return nil
}

// checkSourceLanguage warns when the decoded text does not look like the
// configured source language. It returns the detected code.
func (r *run) checkSourceLanguage(logger *slog.Logger) string {
	text := r.seq.JoinedText()
	if text == "" {
		return ""
	}
	detected, confidence := language.Detect(text)
	if detected == "" || confidence < detectConfidenceThreshold {
		return detected
	}
	source := r.engine.Source()
	if !language.SameBase(detected, source) {
		logging.WarnWithContext(logger, "transcript language differs from source language", "source_language_mismatch",
			logging.String("detected", detected),
			logging.Float64("confidence", confidence),
			logging.String("source_language", source),
			logging.String(logging.FieldErrorHint, "set translation.source_language to match the input"),
			logging.String(logging.FieldImpact, "translations may be poor"),
		)
	}
	return detected
}

func (r *run) convertVariants(_ context.Context, logger *slog.Logger) error {
	cfg := r.svc.config.Script
	source := r.engine.Source()
	r.branches = append(r.branches,
		&branch{
			BranchResult: BranchResult{Name: cfg.BaseSuffix, Kind: BranchVariant, Language: source, Chunks: r.seq.Len()},
			seq:          r.seq,
		},
		&branch{
			BranchResult: BranchResult{Name: cfg.VariantSuffix, Kind: BranchVariant, Language: source, Chunks: r.seq.Len()},
			seq:          script.Convert(r.seq, r.svc.variant),
		},
	)
	logger.Info("script variants prepared",
		logging.String("base_branch", cfg.BaseSuffix),
		logging.String("variant_branch", cfg.VariantSuffix),
		logging.String("mapping", r.svc.variant.Name()),
		logging.String(logging.FieldEventType, "variants_converted"),
	)
	return nil
}

func (r *run) targets() []string {
	if len(r.req.Languages) > 0 {
		return language.NormalizeList(r.req.Languages)
	}
	specs := r.engine.Languages()
	codes := make([]string, 0, len(specs))
	for _, spec := range specs {
		codes = append(codes, spec.Code)
	}
	return codes
}

func (r *run) translateFanout(ctx context.Context, logger *slog.Logger) error {
	targets := r.targets()
	if len(targets) == 0 {
		logger.Info("no target languages selected", logging.String(logging.FieldEventType, "translate_skipped"))
		return nil
	}
	pending := make([]*branch, 0, len(targets))
	for _, code := range targets {
		b := &branch{BranchResult: BranchResult{Name: code, Kind: BranchLanguage, Language: code}}
		r.branches = append(r.branches, b)
		pending = append(pending, b)
	}

	limit := r.svc.config.Translation.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	logger.Info("translation fan-out started",
		logging.Strings("languages", targets),
		logging.Int("workers", limit),
		logging.Int("chunks", r.seq.Len()),
		logging.String(logging.FieldEventType, "translate_start"),
	)

	var g errgroup.Group
	g.SetLimit(limit)
	for _, b := range pending {
		g.Go(func() error {
			r.translateBranch(ctx, b)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// translateBranch fills one language branch. Errors stay on the branch so the
// other branches are unaffected.
func (r *run) translateBranch(ctx context.Context, b *branch) {
	ctx = services.WithBranch(ctx, b.Name)
	logger := logging.WithContext(ctx, r.svc.logger)

	seq, report, err := r.engine.TranslateSequence(ctx, r.seq, b.Name)
	b.FailedChunks = report.FailedCount()
	if err != nil {
		b.Err = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Debug("translation branch stopped", logging.Error(err))
			return
		}
		hint := "check logs for details"
		var unsupported *translation.UnsupportedLanguageError
		if errors.As(err, &unsupported) {
			hint = "add the language to [[translation.languages]] or fix --languages"
		}
		logging.ErrorWithContext(logger, "translation branch failed", "branch_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hint),
		)
		return
	}
	b.seq = seq
	b.Chunks = seq.Len()
	logger.Info("translation branch completed",
		logging.Int("chunks", seq.Len()),
		logging.Int("failed_chunks", b.FailedChunks),
		logging.String(logging.FieldEventType, "branch_translated"),
	)
}

func (r *run) encodeAll(_ context.Context, logger *slog.Logger) error {
	for _, b := range r.branches {
		if b.Failed() {
			r.svc.metrics.Branch(b.Name, metrics.OutcomeFailed)
			continue
		}
		r.encodeBranch(logger, b)
	}
	return nil
}

func (r *run) encodeBranch(logger *slog.Logger, b *branch) {
	logger = logger.With(logging.String(logging.FieldBranch, b.Name))
	path := filepath.Join(r.outputDir, r.baseName+"_"+b.Name+".srt")
	if fileutil.SamePath(path, r.input) {
		logging.WarnWithContext(logger, "output path matches input; leaving input untouched", "output_skipped",
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "use --output-dir to write elsewhere"),
			logging.String(logging.FieldImpact, "branch output is the original input file"),
		)
		b.Path = r.input
		r.result.Paths[b.Name] = r.input
		r.svc.metrics.Branch(b.Name, metrics.OutcomeSkipped)
		return
	}

	if err := fileutil.WriteAtomic(path, srt.Encode(b.seq), 0o644); err != nil {
		b.Err = &IOError{Op: "write output", Path: path, Err: err}
		logging.ErrorWithContext(logger, "failed to write subtitle file", "branch_write_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check output directory permissions and free space"),
		)
		r.svc.metrics.Branch(b.Name, metrics.OutcomeFailed)
		return
	}
	b.Path = path
	r.result.Paths[b.Name] = path

	outcome := metrics.OutcomeWritten
	if b.seq.Empty() {
		outcome = metrics.OutcomeEmpty
	}
	r.svc.metrics.Branch(b.Name, outcome)
	logger.Info("subtitle file written",
		logging.String("path", path),
		logging.Int("cues", b.seq.Len()),
		logging.Int("failed_chunks", b.FailedChunks),
		logging.String(logging.FieldEventType, "branch_written"),
	)
}
