// Package language provides language code normalization, display names and
// text language detection.
//
// Codes are BCP 47 tags parsed with golang.org/x/text; Key gives the lenient
// lookup form used for configuration matching and Canonical the validated
// form. Detect wraps whatlanggo for a best-effort guess of a transcript's
// language.
package language
