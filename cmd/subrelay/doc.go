// Package main hosts the subrelay CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the subtitle
// pipeline and hands it a single input per invocation. Maintenance commands
// inspect the transcript cache, staging work directories and external tool
// availability. Pipeline behaviour lives in the internal packages; commands
// here only parse flags and render results.
package main
