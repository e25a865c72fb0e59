// Package subtitles orchestrates one subrelay run: it turns an input media
// file, transcript, or subtitle file into a set of line-format subtitle
// files, one per branch.
//
// A run moves through fixed stages (init, transcribe, decode,
// convert_variants, translate_fanout, encode_all, cleanup). Media inputs are
// transcribed through the Transcriber capability, optionally after audio
// extraction; transcripts and subtitle files are decoded directly. The
// decoded sequence feeds two script variant branches and one branch per
// target language. Language branches run concurrently in a bounded pool and
// share one in-memory translation cache.
//
// Failures that leave no chunk sequence abort the run before any output is
// written. Failures local to one branch are logged and reported in that
// branch's result while the other branches complete. Cleanup removes only the
// intermediates the run created, including after cancellation.
package subtitles
