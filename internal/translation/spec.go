package translation

import (
	"fmt"
	"slices"

	"subrelay/internal/language"
)

// LanguageSpec defines one target language branch and the relay leg that
// produces it. For the pivot language PivotFrom is the source language; for
// every other language it is the pivot.
type LanguageSpec struct {
	Code        string
	DisplayName string
	PivotFrom   string
	PivotTo     string
}

// NewLanguageSpec validates and canonicalizes a language entry. An empty
// display name falls back to the English name of the code.
func NewLanguageSpec(code, displayName, pivotFrom, pivotTo string) (LanguageSpec, error) {
	var spec LanguageSpec
	var err error
	if spec.Code, err = language.Canonical(code); err != nil {
		return LanguageSpec{}, fmt.Errorf("language spec code: %w", err)
	}
	if spec.PivotFrom, err = language.Canonical(pivotFrom); err != nil {
		return LanguageSpec{}, fmt.Errorf("language spec %s pivot_from: %w", spec.Code, err)
	}
	if pivotTo == "" {
		pivotTo = spec.Code
	}
	if spec.PivotTo, err = language.Canonical(pivotTo); err != nil {
		return LanguageSpec{}, fmt.Errorf("language spec %s pivot_to: %w", spec.Code, err)
	}
	if spec.PivotTo != spec.Code {
		return LanguageSpec{}, fmt.Errorf("language spec %s: pivot_to %q must equal the code", spec.Code, spec.PivotTo)
	}
	if spec.PivotFrom == spec.PivotTo {
		return LanguageSpec{}, fmt.Errorf("language spec %s: relays to itself", spec.Code)
	}
	spec.DisplayName = displayName
	if spec.DisplayName == "" {
		spec.DisplayName = language.DisplayName(spec.Code)
	}
	return spec, nil
}

// Config is the immutable language topology handed to NewEngine.
type Config struct {
	SourceLanguage string
	PivotLanguage  string
	Languages      []LanguageSpec
}

func (c Config) validate() (Config, error) {
	source, err := language.Canonical(c.SourceLanguage)
	if err != nil {
		return Config{}, fmt.Errorf("source language: %w", err)
	}
	pivot, err := language.Canonical(c.PivotLanguage)
	if err != nil {
		return Config{}, fmt.Errorf("pivot language: %w", err)
	}
	if source == pivot {
		return Config{}, fmt.Errorf("pivot language %q must differ from source language", pivot)
	}
	out := Config{SourceLanguage: source, PivotLanguage: pivot, Languages: slices.Clone(c.Languages)}
	seen := make(map[string]struct{}, len(out.Languages))
	for _, spec := range out.Languages {
		if _, dup := seen[spec.Code]; dup {
			return Config{}, fmt.Errorf("duplicate language spec %q", spec.Code)
		}
		seen[spec.Code] = struct{}{}
		want := pivot
		if spec.Code == pivot {
			want = source
		}
		if spec.PivotFrom != want {
			return Config{}, fmt.Errorf("language spec %s: relay must start from %q, got %q", spec.Code, want, spec.PivotFrom)
		}
		if spec.PivotTo != spec.Code {
			return Config{}, fmt.Errorf("language spec %s: relay must end at %q, got %q", spec.Code, spec.Code, spec.PivotTo)
		}
	}
	return out, nil
}
