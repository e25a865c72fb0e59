package subtitles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"subrelay/internal/config"
	"subrelay/internal/logging"
	"subrelay/internal/media/ffprobe"
	"subrelay/internal/metrics"
	"subrelay/internal/notifications"
	"subrelay/internal/script"
	"subrelay/internal/services/llm"
	"subrelay/internal/services/whisper"
	"subrelay/internal/transcriptcache"
	"subrelay/internal/translation"
)

// Transcriber turns an audio file into a structured transcript on disk and
// returns the transcript path. Failures are *whisper.TranscriptionError.
type Transcriber interface {
	Transcribe(ctx context.Context, req whisper.Request) (string, error)
}

// AudioExtractor writes a transcription-ready audio track for a video.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, source, dest string) error
}

// MediaProber inspects media for logging. Its errors never fail a run.
type MediaProber interface {
	Probe(ctx context.Context, path string) (ffprobe.Result, error)
}

// TranscriptStore persists raw transcripts across runs.
type TranscriptStore interface {
	Lookup(ctx context.Context, key transcriptcache.Key) (transcriptcache.Entry, bool, error)
	Put(ctx context.Context, entry transcriptcache.Entry) error
}

// Service runs the subtitle pipeline.
type Service struct {
	config      *config.Config
	base        *slog.Logger
	logger      *slog.Logger
	transcriber Transcriber
	extractor   AudioExtractor
	prober      MediaProber
	relay       translation.Relay
	variant     script.Mapping
	transcripts TranscriptStore
	metrics     *metrics.Recorder
	notifier    notifications.Notifier
	newRunID    func() string
	now         func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithTranscriber replaces the external transcriber.
func WithTranscriber(t Transcriber) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.transcriber = t
		}
	}
}

// WithAudioExtractor replaces the ffmpeg audio extraction.
func WithAudioExtractor(e AudioExtractor) ServiceOption {
	return func(s *Service) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithMediaProber replaces ffprobe.
func WithMediaProber(p MediaProber) ServiceOption {
	return func(s *Service) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithRelay replaces the LLM translation relay.
func WithRelay(r translation.Relay) ServiceOption {
	return func(s *Service) {
		if r != nil {
			s.relay = r
		}
	}
}

// WithVariantMapping replaces the configured script mapping.
func WithVariantMapping(m script.Mapping) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.variant = m
		}
	}
}

// WithTranscriptStore enables transcript reuse across runs.
func WithTranscriptStore(store TranscriptStore) ServiceOption {
	return func(s *Service) {
		if store != nil {
			s.transcripts = store
		}
	}
}

// WithMetrics records run metrics on recorder.
func WithMetrics(recorder *metrics.Recorder) ServiceOption {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithNotifier overrides the ntfy notifier built from config.
func WithNotifier(n notifications.Notifier) ServiceOption {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithRunIDGenerator overrides uuid run identifiers (used in tests).
func WithRunIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// NewService constructs the pipeline. Collaborators not supplied through
// options are built from cfg.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("subtitles: config is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	svc := &Service{
		config:   cfg,
		base:     logger,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}

	if svc.transcriber == nil || svc.extractor == nil {
		whisperSvc := whisper.NewService(whisper.Config{
			Command:      cfg.Transcription.Command,
			Model:        cfg.Transcription.Model,
			Device:       cfg.Transcription.Device,
			Timeout:      time.Duration(cfg.Transcription.TimeoutSeconds) * time.Second,
			FFmpegBinary: cfg.Transcription.FFmpegBinary,
		})
		if svc.transcriber == nil {
			svc.transcriber = whisperSvc
		}
		if svc.extractor == nil {
			svc.extractor = whisperSvc
		}
	}
	if svc.prober == nil {
		svc.prober = ffprobe.NewProber(cfg.Transcription.FFprobeBinary)
	}
	if svc.relay == nil {
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		})
		svc.relay = translation.RelayFunc(client.Translate)
	}
	svc.relay = translation.Throttle(svc.relay, cfg.Translation.RequestsPerMinute)
	if svc.variant == nil {
		mapping, err := VariantMapping(cfg.Script, logger)
		if err != nil {
			return nil, err
		}
		svc.variant = mapping
	}
	if svc.metrics == nil {
		svc.metrics = metrics.NewRecorder()
	}
	if svc.notifier == nil {
		svc.notifier = notifications.NewService(cfg.Notifications)
	}
	return svc, nil
}

// Metrics exposes the run recorder.
func (s *Service) Metrics() *metrics.Recorder {
	return s.metrics
}

// VariantMapping builds the script mapping for the converted branch.
func VariantMapping(cfg config.Script, logger *slog.Logger) (script.Mapping, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mapping)) {
	case config.ScriptMappingIdentity:
		return script.Identity, nil
	case config.ScriptMappingTable:
		table, err := script.LoadTable(cfg.TablePath)
		if err != nil {
			return nil, fmt.Errorf("script mapping: %w", err)
		}
		return table, nil
	case config.ScriptMappingOpenCC, "":
		mapping, err := script.NewOpenCC(cfg.OpenCCProfile, logger)
		if err != nil {
			return nil, fmt.Errorf("script mapping: %w", err)
		}
		return mapping, nil
	default:
		return nil, fmt.Errorf("script mapping: unknown mapping %q", cfg.Mapping)
	}
}

// EngineConfig converts the translation settings into the engine topology.
func EngineConfig(cfg config.Translation) (translation.Config, error) {
	out := translation.Config{
		SourceLanguage: cfg.SourceLanguage,
		PivotLanguage:  cfg.PivotLanguage,
	}
	for _, lang := range cfg.Languages {
		spec, err := translation.NewLanguageSpec(lang.Code, lang.DisplayName, lang.From, lang.To)
		if err != nil {
			return translation.Config{}, err
		}
		out.Languages = append(out.Languages, spec)
	}
	return out, nil
}
