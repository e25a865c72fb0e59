package language

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Key returns the lookup form of a code: trimmed, lower case, with '_'
// separators turned into '-'. It never fails, so unknown codes can still be
// reported back to the caller verbatim.
func Key(code string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(code)), "_", "-")
}

// Canonical validates code as a BCP 47 tag and returns its lower-case
// canonical form ("EN" -> "en", "zh_Hant" -> "zh-hant", "fre" -> "fr").
func Canonical(code string) (string, error) {
	key := Key(code)
	if key == "" {
		return "", errors.New("empty language code")
	}
	tag, err := language.Parse(key)
	if err != nil {
		return "", fmt.Errorf("language code %q: %w", code, err)
	}
	return strings.ToLower(tag.String()), nil
}

// Resolve returns the canonical form of code, or its Key when code does not
// parse. Lookups use it so aliases such as "fre" match entries stored as "fr".
func Resolve(code string) string {
	if canonical, err := Canonical(code); err == nil {
		return canonical
	}
	return Key(code)
}

// ToISO2 converts a recognized code to its two-letter base language, or ""
// when code cannot be parsed.
func ToISO2(code string) string {
	tag, err := language.Parse(Key(code))
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

// ToISO3 converts a recognized code to ISO 639-2/3, or "und".
func ToISO3(code string) string {
	tag, err := language.Parse(Key(code))
	if err != nil {
		return "und"
	}
	base, _ := tag.Base()
	return base.ISO3()
}

// DisplayName returns the English name for code. Unparseable codes are
// returned upper-cased.
func DisplayName(code string) string {
	key := Key(code)
	if key == "" {
		return "Unknown"
	}
	tag, err := language.Parse(key)
	if err != nil {
		return strings.ToUpper(key)
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(key)
}

// SameBase reports whether two codes share a base language ("zh" and
// "zh-hant" do; "en" and "fr" do not).
func SameBase(a, b string) bool {
	aa, bb := ToISO2(a), ToISO2(b)
	return aa != "" && aa == bb
}

// Detect guesses the language of text. It returns the ISO 639-1 code (or ""
// when the detector has no two-letter code for it) and the confidence in [0,1].
func Detect(text string) (string, float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", 0
	}
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391(), info.Confidence
}

// NormalizeList splits comma separated entries, converts them to lookup
// keys and drops blanks and duplicates while keeping order.
func NormalizeList(values []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			key := Resolve(part)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, key)
		}
	}
	return out
}
