// Package preflight provides readiness checks for the filesystem paths and
// the translation relay subrelay depends on.
//
// `subrelay check` renders RunAll together with the binary checks from the
// deps package. `subrelay generate` runs the filesystem checks before a run so
// an unwritable staging directory fails fast instead of after transcription.
package preflight
