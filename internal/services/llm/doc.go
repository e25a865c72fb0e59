// Package llm provides an OpenRouter-compatible chat client used as the
// translation relay.
//
// Client.Translate sends one subtitle line with a JSON-only prompt and returns
// the translated text; it has the shape of a single relay hop and is wrapped by
// the translation engine, which adds caching and pivot routing. HealthCheck is
// used by `subrelay check` to confirm the key and model work.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, empty completions and network
// timeouts with exponential backoff (base 1s, max 10s, 4 attempts by default),
// honouring Retry-After. Context cancellation aborts retries immediately.
// Exhausted retries are tagged services.ErrTransient; other failures
// services.ErrExternalTool.
package llm
