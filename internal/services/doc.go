// Package services defines shared utilities consumed by the pipeline stages
// and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and branch names for
//     logging.
//   - Structured error markers plus the Wrap helper that keep failure
//     messages uniform and classifiable with errors.Is.
//
// Subpackages wrap the external tools and APIs the pipeline talks to
// (transcriber, LLM relay).
package services
