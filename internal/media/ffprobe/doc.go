// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Prober.Probe runs `ffprobe -show_format -show_streams -of json` and returns
// a Result with helpers for stream counts, duration and the primary audio
// stream. The pipeline only logs this metadata, so callers treat probe errors
// as a degraded empty Result.
package ffprobe
