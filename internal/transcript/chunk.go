package transcript

import (
	"fmt"
	"math"
)

// Chunk is one timed text segment. Values are immutable; use WithText to
// derive a copy carrying different text.
type Chunk struct {
	start float64
	end   float64
	text  string
}

// NewChunk validates the time range and returns a chunk.
func NewChunk(start, end float64, text string) (Chunk, error) {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return Chunk{}, fmt.Errorf("chunk range [%v, %v] is not finite", start, end)
	}
	if start < 0 {
		return Chunk{}, fmt.Errorf("chunk start %v is negative", start)
	}
	if end < start {
		return Chunk{}, fmt.Errorf("chunk end %v precedes start %v", end, start)
	}
	return Chunk{start: start, end: end, text: text}, nil
}

// MustChunk is NewChunk for literals known to be valid.
func MustChunk(start, end float64, text string) Chunk {
	c, err := NewChunk(start, end, text)
	if err != nil {
		panic(err)
	}
	return c
}

// Range returns the chunk's (start, end) in seconds.
func (c Chunk) Range() (float64, float64) { return c.start, c.end }

// Start returns the inclusive start in seconds.
func (c Chunk) Start() float64 { return c.start }

// End returns the end in seconds.
func (c Chunk) End() float64 { return c.end }

// Text returns the chunk text. It is empty, never absent, after a failed translation.
func (c Chunk) Text() string { return c.text }

// WithText returns a copy of c with the same timing and new text.
func (c Chunk) WithText(text string) Chunk {
	c.text = text
	return c
}

func (c Chunk) String() string {
	return fmt.Sprintf("[%.3f-%.3f] %s", c.start, c.end, c.text)
}
