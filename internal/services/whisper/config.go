package whisper

import "time"

// Config captures runtime settings for the transcription process.
type Config struct {
	// Command is the transcriber executable (insanely-fast-whisper by default).
	Command string
	// Model is passed as --model-name.
	Model string
	// Device is passed as --device-id ("mps", "0", ...).
	Device string
	// Timeout bounds one transcription on top of the caller's context.
	Timeout time.Duration
	// FFmpegBinary is used for audio extraction.
	FFmpegBinary string
}

// Defaults for an unconfigured service.
const (
	DefaultCommand = "insanely-fast-whisper"
	DefaultModel   = "openai/whisper-large-v3"
	DefaultDevice  = "mps"
	DefaultTimeout = time.Hour
	FFmpegCommand  = "ffmpeg"
)
