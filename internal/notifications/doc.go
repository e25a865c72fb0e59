// Package notifications pushes run outcomes to an ntfy topic.
//
// Transcription of a long recording can take hours, so a finished or failed
// run is announced on the configured topic. Without a topic the package hands
// out a no-op notifier and callers need no special casing.
package notifications
