package translation

import (
	"context"

	"golang.org/x/time/rate"
)

// Relay performs one single-hop translation.
type Relay interface {
	Relay(ctx context.Context, text, from, to string) (string, error)
}

// RelayFunc adapts a function to Relay.
type RelayFunc func(ctx context.Context, text, from, to string) (string, error)

func (f RelayFunc) Relay(ctx context.Context, text, from, to string) (string, error) {
	return f(ctx, text, from, to)
}

type throttledRelay struct {
	next    Relay
	limiter *rate.Limiter
}

// Throttle limits relay calls to requestsPerMinute across all callers. A
// non-positive rate returns next unchanged.
func Throttle(next Relay, requestsPerMinute int) Relay {
	if requestsPerMinute <= 0 {
		return next
	}
	return &throttledRelay{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (t *throttledRelay) Relay(ctx context.Context, text, from, to string) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return t.next.Relay(ctx, text, from, to)
}
