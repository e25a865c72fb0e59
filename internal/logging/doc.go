// Package logging assembles structured slog loggers and formatting helpers used
// across subrelay.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context-aware helpers that tag log lines with the run ID, stage and branch
// carried in a context. WarnWithContext and ErrorWithContext keep warning and
// error lines uniform (event_type, error_hint, impact). NewNop returns a
// discarding logger for tests and optional wiring.
package logging
