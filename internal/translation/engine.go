package translation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/singleflight"

	"subrelay/internal/language"
	"subrelay/internal/logging"
)

// Observer receives engine events. The metrics package provides the
// Prometheus implementation.
type Observer interface {
	RelayCall(leg Leg, err error)
	CacheLookup(hit bool)
	ChunksFailed(language string, count int)
}

type nopObserver struct{}

func (nopObserver) RelayCall(Leg, error)     {}
func (nopObserver) CacheLookup(bool)         {}
func (nopObserver) ChunksFailed(string, int) {}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an event observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// Engine translates text through the configured pivot language.
type Engine struct {
	source   string
	pivot    string
	specs    map[string]LanguageSpec
	codes    []string
	relay    Relay
	cache    Cache
	group    singleflight.Group
	logger   *slog.Logger
	observer Observer
}

// NewEngine validates the language topology and returns an engine bound to
// relay and cache. A nil cache gets a fresh MemoryCache.
func NewEngine(cfg Config, relay Relay, cache Cache, opts ...Option) (*Engine, error) {
	if relay == nil {
		return nil, fmt.Errorf("translation engine: relay is required")
	}
	validated, err := cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("translation engine: %w", err)
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	e := &Engine{
		source:   validated.SourceLanguage,
		pivot:    validated.PivotLanguage,
		specs:    make(map[string]LanguageSpec, len(validated.Languages)),
		relay:    relay,
		cache:    cache,
		logger:   logging.NewNop(),
		observer: nopObserver{},
	}
	for _, spec := range validated.Languages {
		e.specs[spec.Code] = spec
		e.codes = append(e.codes, spec.Code)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Source returns the canonical source language.
func (e *Engine) Source() string { return e.source }

// Pivot returns the canonical pivot language.
func (e *Engine) Pivot() string { return e.pivot }

// Languages returns the configured specs in configuration order.
func (e *Engine) Languages() []LanguageSpec {
	out := make([]LanguageSpec, 0, len(e.codes))
	for _, code := range e.codes {
		out = append(out, e.specs[code])
	}
	return out
}

// Lookup resolves a target code to its spec.
func (e *Engine) Lookup(code string) (LanguageSpec, error) {
	spec, ok := e.specs[language.Resolve(code)]
	if !ok {
		supported := append([]string(nil), e.codes...)
		sort.Strings(supported)
		return LanguageSpec{}, &UnsupportedLanguageError{Code: code, Supported: supported}
	}
	return spec, nil
}

// Translate returns text in the target language. Blank input yields "" with
// no relay call. The pivot target costs one relay call; any other target costs
// two, each cached independently.
func (e *Engine) Translate(ctx context.Context, text, target string) (string, error) {
	spec, err := e.Lookup(target)
	if err != nil {
		return "", err
	}
	return e.translate(ctx, text, spec)
}

func (e *Engine) translate(ctx context.Context, text string, spec LanguageSpec) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	pivotText, err := e.relayLeg(ctx, LegToPivot, Route{From: e.source, To: e.pivot}, text)
	if err != nil {
		return "", err
	}
	if spec.Code == e.pivot {
		return pivotText, nil
	}
	if strings.TrimSpace(pivotText) == "" {
		return "", nil
	}
	return e.relayLeg(ctx, LegFromPivot, Route{From: spec.PivotFrom, To: spec.PivotTo}, pivotText)
}

// relayLeg serves a hop from the cache or performs it once. Concurrent misses
// on the same key share a single relay call. Failures are not cached.
func (e *Engine) relayLeg(ctx context.Context, leg Leg, route Route, text string) (string, error) {
	if cached, ok := e.cache.Get(text, route); ok {
		e.observer.CacheLookup(true)
		return cached, nil
	}
	e.observer.CacheLookup(false)

	key := route.String() + "\x00" + text
	value, err, _ := e.group.Do(key, func() (any, error) {
		if cached, ok := e.cache.Get(text, route); ok {
			return cached, nil
		}
		out, err := e.relay.Relay(ctx, text, route.From, route.To)
		e.observer.RelayCall(leg, err)
		if err != nil {
			return "", err
		}
		e.cache.Put(text, route, out)
		return out, nil
	})
	if err != nil {
		return "", &TranslationError{Leg: leg, Route: route, Err: err}
	}
	return value.(string), nil
}
