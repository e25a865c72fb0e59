package translation

import (
	"fmt"
	"strings"
)

// Leg identifies which hop of a relay failed.
type Leg string

const (
	LegToPivot   Leg = "to-pivot"
	LegFromPivot Leg = "from-pivot"
)

// UnsupportedLanguageError reports a target that is not among the configured
// language specs. It is returned before any relay call is made.
type UnsupportedLanguageError struct {
	Code      string
	Supported []string
}

func (e *UnsupportedLanguageError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("unsupported target language %q", e.Code)
	}
	return fmt.Sprintf("unsupported target language %q (configured: %s)", e.Code, strings.Join(e.Supported, ", "))
}

// TranslationError wraps a failed relay call with the leg and route it was on.
type TranslationError struct {
	Leg   Leg
	Route Route
	Err   error
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s (%s): %v", e.Leg, e.Route, e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }
