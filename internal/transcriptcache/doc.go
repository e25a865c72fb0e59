// Package transcriptcache persists raw transcriber output in SQLite so a
// re-run against the same media skips the transcription step.
//
// Entries are keyed by the media content hash together with the model and
// device that produced them. The store uses WAL journaling and retries
// briefly when the database is busy, which keeps concurrent subrelay
// invocations from failing on each other's writes.
package transcriptcache
