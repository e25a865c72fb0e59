// Package logs reads back the subrelay log file.
//
// It backs the logs command: the last N lines, optionally narrowed to one
// run, and a polling follow mode that survives log truncation.
package logs
