package whisper

import (
	"fmt"
	"strings"

	"subrelay/internal/services"
)

// stderrLimit caps the diagnostic output kept on a TranscriptionError.
const stderrLimit = 4096

// TranscriptionError reports a failed transcriber run together with the
// process diagnostics. It matches services.ErrExternalTool, or
// services.ErrTimeout when the run hit its deadline.
type TranscriptionError struct {
	Command  string
	ExitCode int
	Stderr   string
	Err      error
	timedOut bool
}

func (e *TranscriptionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "transcription failed: %s", e.Command)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " exited with code %d", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, ": %s", e.Stderr)
	}
	return b.String()
}

func (e *TranscriptionError) Unwrap() []error {
	marker := services.ErrExternalTool
	if e.timedOut {
		marker = services.ErrTimeout
	}
	if e.Err == nil {
		return []error{marker}
	}
	return []error{marker, e.Err}
}

// trimDiagnostics keeps the tail of stderr, where the failure usually is.
func trimDiagnostics(stderr []byte) string {
	text := strings.TrimSpace(string(stderr))
	if len(text) <= stderrLimit {
		return text
	}
	return "..." + text[len(text)-stderrLimit:]
}
