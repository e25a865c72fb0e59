package whisper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"subrelay/internal/services"
)

func TestTranscribeBuildsCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "clip.json")
	var gotName string
	var gotArgs []string

	svc := NewService(Config{Model: "m", Device: "0"})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, os.WriteFile(out, []byte(`{"chunks":[]}`), 0o644)
	})

	path, err := svc.Transcribe(context.Background(), Request{AudioPath: "in.wav", OutputPath: out, Model: "override"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if path != out {
		t.Fatalf("path = %q, want %q", path, out)
	}
	if gotName != DefaultCommand {
		t.Fatalf("command = %q", gotName)
	}
	want := []string{"--file-name", "in.wav", "--device-id", "0", "--model-name", "override", "--transcript-path", out}
	if !reflect.DeepEqual(gotArgs, want) {
		t.Fatalf("args = %v, want %v", gotArgs, want)
	}
}

func TestTranscribeFailureCarriesStderr(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("CUDA out of memory\n"), errors.New("exit status 1")
	})
	_, err := svc.Transcribe(context.Background(), Request{AudioPath: "a.wav", OutputPath: filepath.Join(t.TempDir(), "a.json")})
	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if terr.Stderr != "CUDA out of memory" {
		t.Fatalf("stderr = %q", terr.Stderr)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Fatalf("expected diagnostics in message, got %v", err)
	}
}

func TestTranscribeMissingOutputFails(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) { return nil, nil })
	_, err := svc.Transcribe(context.Background(), Request{AudioPath: "a.wav", OutputPath: filepath.Join(t.TempDir(), "missing.json")})
	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
}

func TestTranscribeTimeout(t *testing.T) {
	svc := NewService(Config{Timeout: 10 * time.Millisecond})
	svc.WithCommandRunner(func(ctx context.Context, _ string, _ ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, err := svc.Transcribe(context.Background(), Request{AudioPath: "a.wav", OutputPath: "a.json"})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestTranscribeCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(Config{})
	svc.WithCommandRunner(func(ctx context.Context, _ string, _ ...string) ([]byte, error) { return nil, ctx.Err() })
	_, err := svc.Transcribe(ctx, Request{AudioPath: "a.wav", OutputPath: "a.json"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTranscribeRealProcessExitCode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-whisper")
	body := "#!/bin/sh\necho 'model not found' >&2\nexit 3\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	svc := NewService(Config{Command: script})
	_, err := svc.Transcribe(context.Background(), Request{AudioPath: "a.wav", OutputPath: filepath.Join(dir, "a.json")})
	var terr *TranscriptionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if terr.ExitCode != 3 || terr.Stderr != "model not found" {
		t.Fatalf("unexpected error fields %+v", terr)
	}
}

func TestExtractAudioArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	svc := NewService(Config{FFmpegBinary: "/opt/ffmpeg"})
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, nil
	})
	if err := svc.ExtractAudio(context.Background(), "movie.mkv", "movie.wav"); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("binary = %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, fragment := range []string{"-i movie.mkv", "-vn", "-acodec pcm_s16le", "-ar 16000", "-ac 1"} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("expected %q in %q", fragment, joined)
		}
	}
	if gotArgs[len(gotArgs)-1] != "movie.wav" {
		t.Fatalf("expected destination last, got %v", gotArgs)
	}
}

func TestExtractAudioFailure(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("Invalid data found"), errors.New("exit status 1")
	})
	err := svc.ExtractAudio(context.Background(), "bad.mkv", "bad.wav")
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("unexpected error %v", err)
	}
}
