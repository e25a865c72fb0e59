package ffprobe

import (
	"context"
	"errors"
	"testing"

	"subrelay/internal/services"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2, "tags": {"language": "CHI"}},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio"},
    {"index": 3, "codec_name": "subrip", "codec_type": "subtitle"}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 4, "duration": "123.45", "format_name": "mov,mp4"}
}`

func TestProbeParsesOutput(t *testing.T) {
	var gotArgs []string
	prober := NewProber("").WithRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		if name != "ffprobe" {
			t.Fatalf("unexpected binary %q", name)
		}
		gotArgs = args
		return []byte(sampleOutput), nil
	})
	result, err := prober.Probe(context.Background(), "clip.mp4")
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if gotArgs[len(gotArgs)-1] != "clip.mp4" || gotArgs[len(gotArgs)-2] != "--" {
		t.Fatalf("expected path after --, got %v", gotArgs)
	}
	if result.VideoStreamCount() != 1 || result.AudioStreamCount() != 2 || result.SubtitleStreamCount() != 1 {
		t.Fatalf("unexpected stream counts in %+v", result)
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
	audio, ok := result.PrimaryAudio()
	if !ok || audio.CodecName != "aac" || audio.Language() != "chi" {
		t.Fatalf("unexpected primary audio %+v", audio)
	}
	if result.Empty() {
		t.Fatal("expected non-empty result")
	}
}

func TestProbeFailureIsExternalTool(t *testing.T) {
	prober := NewProber("ffprobe").WithRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exit status 1: No such file")
	})
	_, err := prober.Probe(context.Background(), "missing.mp4")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, err := prober.Probe(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestDurationHandlesInvalidNumbers(t *testing.T) {
	for _, value := range []string{"", "bad", "-1"} {
		if got := (Result{Format: Format{Duration: value}}).DurationSeconds(); got != 0 {
			t.Fatalf("DurationSeconds(%q) = %v, want 0", value, got)
		}
	}
	if !(Result{}).Empty() {
		t.Fatal("expected zero result to be empty")
	}
}
