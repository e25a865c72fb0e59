package script

import (
	"subrelay/internal/transcript"
)

// Mapping rewrites text from one script variant to another. Implementations
// must be total: text they cannot map is returned unchanged.
type Mapping interface {
	Name() string
	Map(text string) string
}

type identity struct{}

func (identity) Name() string           { return "identity" }
func (identity) Map(text string) string { return text }

// Identity leaves text untouched.
var Identity Mapping = identity{}

// IsIdentity reports whether m performs no conversion.
func IsIdentity(m Mapping) bool {
	if m == nil {
		return true
	}
	_, ok := m.(identity)
	return ok
}

// Convert applies m to the text of every chunk, keeping timestamps and order.
// An identity (or nil) mapping returns seq itself.
func Convert(seq transcript.Sequence, m Mapping) transcript.Sequence {
	if IsIdentity(m) || seq.Empty() {
		return seq
	}
	return seq.Map(func(_ int, c transcript.Chunk) transcript.Chunk {
		return c.WithText(m.Map(c.Text()))
	})
}
