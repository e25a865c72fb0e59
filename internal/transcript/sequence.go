package transcript

import "strings"

// Sequence is an ordered, immutable list of chunks. Insertion order is cue
// order; nothing in this module reorders a sequence.
type Sequence struct {
	chunks []Chunk
}

// NewSequence copies chunks into a new sequence.
func NewSequence(chunks ...Chunk) Sequence {
	if len(chunks) == 0 {
		return Sequence{}
	}
	cp := make([]Chunk, len(chunks))
	copy(cp, chunks)
	return Sequence{chunks: cp}
}

// Len reports the number of chunks.
func (s Sequence) Len() int { return len(s.chunks) }

// Empty reports whether the sequence holds no chunks.
func (s Sequence) Empty() bool { return len(s.chunks) == 0 }

// At returns the chunk at index i.
func (s Sequence) At(i int) Chunk { return s.chunks[i] }

// Chunks returns a copy of the underlying chunks.
func (s Sequence) Chunks() []Chunk {
	if len(s.chunks) == 0 {
		return nil
	}
	cp := make([]Chunk, len(s.chunks))
	copy(cp, s.chunks)
	return cp
}

// Map builds a new sequence by applying fn to every chunk in order.
func (s Sequence) Map(fn func(int, Chunk) Chunk) Sequence {
	if len(s.chunks) == 0 {
		return Sequence{}
	}
	out := make([]Chunk, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = fn(i, c)
	}
	return Sequence{chunks: out}
}

// Texts returns the text of every chunk in order.
func (s Sequence) Texts() []string {
	out := make([]string, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = c.text
	}
	return out
}

// JoinedText concatenates chunk text with single spaces, skipping blanks.
func (s Sequence) JoinedText() string {
	parts := make([]string, 0, len(s.chunks))
	for _, c := range s.chunks {
		if t := strings.TrimSpace(c.text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Equal reports whether both sequences hold identical chunks in the same order.
func (s Sequence) Equal(other Sequence) bool {
	if len(s.chunks) != len(other.chunks) {
		return false
	}
	for i := range s.chunks {
		if s.chunks[i] != other.chunks[i] {
			return false
		}
	}
	return true
}
