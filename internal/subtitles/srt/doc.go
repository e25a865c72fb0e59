// Package srt converts chunk sequences to and from their two file forms: the
// structured JSON transcript written by the transcriber and the numbered
// line-based subtitle format used for every output file.
//
// Encode is the canonical writer. DecodeLineFormat and DecodeTranscript are
// the readers; both return *FormatError on malformed input.
package srt
