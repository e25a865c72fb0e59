package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"subrelay/internal/fileutil"
	"subrelay/internal/language"
	"subrelay/internal/logging"
	"subrelay/internal/services"
	"subrelay/internal/staging"
	"subrelay/internal/textutil"
	"subrelay/internal/transcript"
	"subrelay/internal/transcriptcache"
	"subrelay/internal/translation"
)

// run holds the state of one Generate call.
type run struct {
	svc    *Service
	req    GenerateRequest
	result GenerateResult

	kind      InputKind
	input     string
	baseName  string
	outputDir string
	model     string
	device    string
	engine    *translation.Engine
	lock      *flock.Flock

	workDir   string
	artifacts []string

	payload  []byte
	cacheKey *transcriptcache.Key
	seq      transcript.Sequence
	branches []*branch
}

type branch struct {
	BranchResult
	seq transcript.Sequence
}

func (r *run) init(ctx context.Context, logger *slog.Logger) error {
	cfg := r.svc.config
	input := strings.TrimSpace(r.req.InputPath)
	if input == "" {
		return services.Wrap(services.ErrValidation, "subtitles", "init", "Input path is required", nil)
	}
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	info, err := os.Stat(input)
	if err != nil {
		return &IOError{Op: "open input", Path: input, Err: err}
	}
	if info.IsDir() {
		return &IOError{Op: "open input", Path: input, Err: errors.New("is a directory")}
	}
	kind, err := ClassifyInput(input)
	if err != nil {
		return err
	}
	r.input = input
	r.kind = kind
	r.result.InputPath = input
	r.result.InputKind = kind

	r.baseName = textutil.SanitizeFileName(r.req.BaseName)
	if r.baseName == "" {
		r.baseName = textutil.SanitizeFileName(BaseName(input))
	}
	if r.baseName == "" {
		r.baseName = "subtitles"
	}
	r.outputDir = strings.TrimSpace(r.req.OutputDir)
	if r.outputDir == "" {
		r.outputDir = filepath.Dir(input)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return &IOError{Op: "create output directory", Path: r.outputDir, Err: err}
	}
	r.result.OutputDir = r.outputDir

	r.model = firstNonEmpty(r.req.Model, cfg.Transcription.Model)
	r.device = firstNonEmpty(r.req.Device, cfg.Transcription.Device)

	engineCfg, err := EngineConfig(cfg.Translation)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "subtitles", "init", "Invalid translation languages", err)
	}
	r.engine, err = translation.NewEngine(engineCfg, r.svc.relay, translation.NewMemoryCache(),
		translation.WithLogger(logging.NewComponentLogger(r.svc.base, "translation")),
		translation.WithObserver(r.svc.metrics),
	)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "subtitles", "init", "Invalid translation languages", err)
	}

	if err := r.checkTargets(); err != nil {
		return err
	}
	if err := r.acquireLock(); err != nil {
		return err
	}

	if hours := cfg.Cache.StaleWorkHours; hours > 0 {
		staging.CleanStale(ctx, cfg.WorkRoot(), time.Duration(hours)*time.Hour, logger)
	}

	logger.Info("input classified",
		logging.String("input", input),
		logging.String("input_kind", string(kind)),
		logging.String("output_dir", r.outputDir),
		logging.String("base_name", r.baseName),
		logging.String(logging.FieldEventType, "input_classified"),
	)
	if kind.NeedsTranscription() {
		r.probe(ctx, logger)
	}
	return nil
}

// checkTargets rejects language filters that would reuse a script branch name.
func (r *run) checkTargets() error {
	scriptCfg := r.svc.config.Script
	for _, code := range r.targets() {
		for _, suffix := range []string{scriptCfg.BaseSuffix, scriptCfg.VariantSuffix} {
			if code == suffix || code == language.Key(suffix) {
				return services.Wrap(services.ErrValidation, "subtitles", "init",
					fmt.Sprintf("Language %q collides with script branch %q", code, suffix), nil)
			}
		}
	}
	return nil
}

// acquireLock serializes runs that would write the same output files.
func (r *run) acquireLock() error {
	lockDir := r.svc.config.LockDir()
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return &IOError{Op: "create lock directory", Path: lockDir, Err: err}
	}
	lock := flock.New(filepath.Join(lockDir, textutil.SanitizeToken(r.baseName)+".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return services.Wrap(services.ErrTransient, "subtitles", "acquire lock", "Failed to lock output base name", err)
	}
	if !ok {
		return services.Wrap(services.ErrTransient, "subtitles", "acquire lock",
			fmt.Sprintf("Another subrelay run is writing %q outputs", r.baseName), nil)
	}
	r.lock = lock
	return nil
}

func (r *run) probe(ctx context.Context, logger *slog.Logger) {
	if r.svc.prober == nil {
		return
	}
	result, err := r.svc.prober.Probe(ctx, r.input)
	if err != nil {
		logging.WarnWithContext(logger, "media probe failed", "media_probe_failed",
			logging.String("input", r.input),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe or set transcription.ffprobe_binary"),
			logging.String(logging.FieldImpact, "media details missing from logs"),
		)
		return
	}
	r.result.MediaDuration = result.DurationSeconds()
	attrs := []logging.Attr{
		logging.Float64("duration_seconds", result.DurationSeconds()),
		logging.String("format", result.Format.FormatName),
		logging.Int("audio_streams", result.AudioStreamCount()),
		logging.Int("video_streams", result.VideoStreamCount()),
		logging.Int("subtitle_streams", result.SubtitleStreamCount()),
		logging.String(logging.FieldEventType, "media_probed"),
	}
	if audio, ok := result.PrimaryAudio(); ok {
		attrs = append(attrs,
			logging.String("audio_codec", audio.CodecName),
			logging.String("audio_language", audio.Language()),
		)
	}
	logger.Info("media probed", logging.Args(attrs...)...)
}

func (r *run) transcribe(ctx context.Context, logger *slog.Logger) error {
	if store := r.svc.transcripts; store != nil {
		hash, err := fileutil.HashFile(r.input)
		if err != nil {
			return &IOError{Op: "read input", Path: r.input, Err: err}
		}
		key := transcriptcache.Key{MediaHash: hash, Model: r.model, Device: r.device}
		r.cacheKey = &key
		entry, ok, err := store.Lookup(ctx, key)
		switch {
		case err != nil:
			logging.WarnWithContext(logger, "transcript cache lookup failed", "transcript_cache_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run subrelay cache clear if the cache is corrupt"),
				logging.String(logging.FieldImpact, "transcriber runs again"),
			)
		case ok:
			r.svc.metrics.TranscriptLookup(true)
			r.payload = entry.Payload
			r.result.TranscriptCached = true
			logger.Info("transcript cache hit",
				logging.String("media_hash", hash),
				logging.Int("chunks", entry.ChunkCount),
				logging.String(logging.FieldEventType, "transcript_cache_hit"),
			)
			return nil
		default:
			r.svc.metrics.TranscriptLookup(false)
		}
	}

	workDir, err := staging.CreateWorkDir(r.svc.config.WorkRoot(), r.result.RunID)
	if err != nil {
		return &IOError{Op: "create work directory", Path: r.svc.config.WorkRoot(), Err: err}
	}
	r.workDir = workDir

	audio := r.input
	if r.kind == InputVideo {
		audio = filepath.Join(workDir, "audio.wav")
		r.track(audio)
		start := time.Now()
		if err := r.svc.extractor.ExtractAudio(ctx, r.input, audio); err != nil {
			return err
		}
		logger.Info("audio extracted",
			logging.String("audio", audio),
			logging.Duration("elapsed", time.Since(start)),
			logging.String(logging.FieldEventType, "audio_extracted"),
		)
	}

	output := filepath.Join(workDir, "transcript.json")
	r.track(output)
	start := time.Now()
	logger.Info("transcription started",
		logging.String("model", r.model),
		logging.String("device", r.device),
		logging.String(logging.FieldEventType, "transcription_start"),
	)
	path, err := r.svc.transcriber.Transcribe(ctx, transcriberRequest(audio, output, r.model, r.device))
	if err != nil {
		return err
	}
	if path != output {
		r.track(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &IOError{Op: "read transcript", Path: path, Err: err}
	}
	r.payload = data
	logger.Info("transcription completed",
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("bytes", len(data)),
		logging.String(logging.FieldEventType, "transcription_complete"),
	)
	return nil
}

func (r *run) track(path string) {
	r.artifacts = append(r.artifacts, path)
}

func (r *run) cleanup(ctx context.Context) {
	ctx = services.WithStage(context.WithoutCancel(ctx), StageCleanup)
	logger := logging.WithContext(ctx, r.svc.logger)
	start := time.Now()
	defer func() {
		r.svc.metrics.ObserveStage(StageCleanup, time.Since(start))
		if r.lock != nil {
			_ = r.lock.Unlock()
		}
	}()

	if r.req.KeepIntermediates {
		for _, path := range r.artifacts {
			if _, err := os.Stat(path); err == nil {
				r.result.Intermediates = append(r.result.Intermediates, path)
			}
		}
		if len(r.result.Intermediates) > 0 {
			logger.Info("intermediates kept",
				logging.Strings("paths", r.result.Intermediates),
				logging.String(logging.FieldEventType, "intermediates_kept"),
			)
		}
		return
	}

	removed := 0
	for _, path := range r.artifacts {
		if err := fileutil.RemoveIfExists(path); err != nil {
			logging.WarnWithContext(logger, "failed to remove intermediate file", "cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "intermediate file left on disk"),
			)
			continue
		}
		removed++
	}
	if r.workDir != "" {
		if err := os.RemoveAll(r.workDir); err != nil {
			logging.WarnWithContext(logger, "failed to remove work directory", "cleanup_failed",
				logging.String("path", r.workDir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale sweep will remove it later"),
			)
		}
	}
	if len(r.artifacts) > 0 {
		logger.Debug("intermediates removed",
			logging.Int("count", removed),
			logging.String(logging.FieldEventType, "cleanup_complete"),
		)
	}
}

// collect copies branch outcomes into the result in plan order.
func (r *run) collect() {
	r.result.Branches = make([]BranchResult, 0, len(r.branches))
	for _, b := range r.branches {
		r.result.Branches = append(r.result.Branches, b.BranchResult)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
