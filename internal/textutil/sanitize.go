package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe to use as an output base name. Path
// separators and colons become dashes, other reserved or control characters
// are dropped, and trailing dots are trimmed.
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			b.WriteByte('-')
		case strings.ContainsRune("?\"<>|", r), unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(strings.TrimSpace(b.String()), ". ")
}

// SanitizeToken reduces value to a lowercase token of letters, digits,
// hyphens and underscores. Letters outside ASCII are kept so distinct
// non-Latin names stay distinct. Empty results become "unknown".
func SanitizeToken(value string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if out := strings.Trim(b.String(), "_-"); out != "" {
		return out
	}
	return "unknown"
}
