// Package transcript holds the in-memory chunk model shared by the codec,
// script conversion, translation and the generation pipeline.
//
// A Chunk is a timed text segment; a Sequence is an ordered run of chunks in
// cue order. Both are values: every transform yields a new Sequence so the
// decoded source survives a failed translation untouched.
package transcript
