package srt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoChunks marks a transcript document without a chunks list. Callers may
// treat it as an empty transcript rather than a fatal decode failure.
var ErrNoChunks = errors.New("transcript has no chunks")

// FormatError reports malformed transcript or subtitle input.
type FormatError struct {
	// Format is "transcript" or "srt".
	Format string
	// Line is the 1-based input line for line-format errors, 0 otherwise.
	Line int
	// Index is the 0-based chunk index for transcript errors, -1 when not applicable.
	Index  int
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString(e.Format)
	b.WriteString(" format")
	switch {
	case e.Line > 0:
		fmt.Fprintf(&b, " (line %d)", e.Line)
	case e.Index >= 0:
		fmt.Fprintf(&b, " (chunk %d)", e.Index)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return e.Err }

func transcriptError(index int, reason string, err error) *FormatError {
	return &FormatError{Format: "transcript", Index: index, Reason: reason, Err: err}
}

func lineError(line int, reason string, err error) *FormatError {
	return &FormatError{Format: "srt", Line: line, Index: -1, Reason: reason, Err: err}
}
