package transcript

import (
	"math"
	"testing"
)

func TestNewChunkValidatesRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		wantErr    bool
	}{
		{name: "zero length", start: 1, end: 1},
		{name: "ordinary", start: 0, end: 1.2},
		{name: "negative start", start: -0.1, end: 1, wantErr: true},
		{name: "end before start", start: 2, end: 1, wantErr: true},
		{name: "nan", start: math.NaN(), end: 1, wantErr: true},
		{name: "inf", start: 0, end: math.Inf(1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunk(tt.start, tt.end, "x")
			if tt.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestChunkAccessors(t *testing.T) {
	c := MustChunk(0.5, 1.25, "hello")
	start, end := c.Range()
	if start != 0.5 || end != 1.25 {
		t.Fatalf("unexpected range %v-%v", start, end)
	}
	if c.Text() != "hello" {
		t.Fatalf("unexpected text %q", c.Text())
	}
	changed := c.WithText("")
	if changed.Text() != "" || c.Text() != "hello" {
		t.Fatalf("WithText mutated original: %q / %q", c.Text(), changed.Text())
	}
	if changed.Start() != c.Start() || changed.End() != c.End() {
		t.Fatal("WithText changed timing")
	}
}

func TestSequenceMapLeavesSourceIntact(t *testing.T) {
	src := NewSequence(MustChunk(0, 1, "a"), MustChunk(1, 2, "b"))
	mapped := src.Map(func(i int, c Chunk) Chunk { return c.WithText("x") })

	if got := src.Texts(); got[0] != "a" || got[1] != "b" {
		t.Fatalf("source mutated: %v", got)
	}
	if mapped.Len() != 2 || mapped.At(1).Text() != "x" {
		t.Fatalf("unexpected mapped sequence: %v", mapped.Texts())
	}

	chunks := src.Chunks()
	chunks[0] = MustChunk(5, 6, "z")
	if src.At(0).Text() != "a" {
		t.Fatal("Chunks returned shared backing array")
	}
}

func TestSequenceJoinedTextSkipsBlanks(t *testing.T) {
	seq := NewSequence(MustChunk(0, 1, " 你好 "), MustChunk(1, 2, ""), MustChunk(2, 3, "世界"))
	if got := seq.JoinedText(); got != "你好 世界" {
		t.Fatalf("unexpected joined text %q", got)
	}
	if !seq.Equal(NewSequence(seq.Chunks()...)) {
		t.Fatal("expected copy to be equal")
	}
	if (Sequence{}).Len() != 0 || !(Sequence{}).Empty() {
		t.Fatal("zero sequence should be empty")
	}
}
