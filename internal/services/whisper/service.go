package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"subrelay/internal/services"
)

// CommandRunner executes name with args and returns the captured stderr.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Request describes one transcription.
type Request struct {
	AudioPath  string
	OutputPath string
	// Model and Device override the service defaults when set.
	Model  string
	Device string
}

// Service runs the transcriber and ffmpeg as external processes.
type Service struct {
	cfg    Config
	runner CommandRunner
}

// NewService creates a service, filling omitted settings with defaults.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Command) == "" {
		cfg.Command = DefaultCommand
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if strings.TrimSpace(cfg.Device) == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if strings.TrimSpace(cfg.FFmpegBinary) == "" {
		cfg.FFmpegBinary = FFmpegCommand
	}
	return &Service{cfg: cfg, runner: runCommand}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner CommandRunner) {
	if runner != nil {
		s.runner = runner
	}
}

// Model returns the configured model name for logging.
func (s *Service) Model() string { return s.cfg.Model }

// Device returns the configured device for logging.
func (s *Service) Device() string { return s.cfg.Device }

// Command returns the transcriber executable.
func (s *Service) Command() string { return s.cfg.Command }

// Transcribe runs the transcriber on req.AudioPath and returns the path of the
// structured transcript it wrote. Any failure is a *TranscriptionError.
func (s *Service) Transcribe(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.AudioPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return "", services.Wrap(services.ErrValidation, "transcribe", "request", "audio and output paths are required", nil)
	}
	model := firstNonEmpty(req.Model, s.cfg.Model)
	device := firstNonEmpty(req.Device, s.cfg.Device)

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	args := buildTranscribeArgs(req.AudioPath, device, model, req.OutputPath)
	stderr, err := s.runner(runCtx, s.cfg.Command, args...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TranscriptionError{
			Command:  s.cfg.Command,
			ExitCode: exitCode(err),
			Stderr:   trimDiagnostics(stderr),
			Err:      err,
			timedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
		}
	}
	if info, statErr := os.Stat(req.OutputPath); statErr != nil || info.IsDir() {
		return "", &TranscriptionError{
			Command:  s.cfg.Command,
			ExitCode: 0,
			Stderr:   trimDiagnostics(stderr),
			Err:      fmt.Errorf("transcript %s was not written", req.OutputPath),
		}
	}
	return req.OutputPath, nil
}

func buildTranscribeArgs(audio, device, model, output string) []string {
	return []string{
		"--file-name", audio,
		"--device-id", device,
		"--model-name", model,
		"--transcript-path", output,
	}
}

// ExtractAudio converts source into a mono 16kHz PCM WAV at dest.
func (s *Service) ExtractAudio(ctx context.Context, source, dest string) error {
	stderr, err := s.runner(ctx, s.cfg.FFmpegBinary, buildExtractArgs(source, dest)...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		detail := trimDiagnostics(stderr)
		return services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", detail, err)
	}
	return nil
}

func buildExtractArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		dest,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
