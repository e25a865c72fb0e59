package srt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"subrelay/internal/transcript"
)

type transcriptDocument struct {
	Text   string             `json:"text"`
	Chunks *[]json.RawMessage `json:"chunks"`
}

type transcriptChunk struct {
	Timestamp []*float64 `json:"timestamp"`
	Text      *string    `json:"text"`
}

// DecodeTranscript decodes a structured transcript whose root holds a
// chunks list of {"timestamp": [start, end], "text": "..."} entries.
//
// A document without a chunks key yields an empty sequence and a
// *FormatError wrapping ErrNoChunks. Malformed entries fail the whole decode.
func DecodeTranscript(data []byte) (transcript.Sequence, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	var doc transcriptDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return transcript.Sequence{}, transcriptError(-1, "invalid document", err)
	}
	if doc.Chunks == nil {
		return transcript.Sequence{}, transcriptError(-1, "missing chunks key", ErrNoChunks)
	}

	raw := *doc.Chunks
	chunks := make([]transcript.Chunk, 0, len(raw))
	for i, entry := range raw {
		var parsed transcriptChunk
		if err := json.Unmarshal(entry, &parsed); err != nil {
			return transcript.Sequence{}, transcriptError(i, "invalid chunk", err)
		}
		if len(parsed.Timestamp) != 2 {
			return transcript.Sequence{}, transcriptError(i, fmt.Sprintf("timestamp must hold 2 values, got %d", len(parsed.Timestamp)), nil)
		}
		if parsed.Timestamp[0] == nil || parsed.Timestamp[1] == nil {
			return transcript.Sequence{}, transcriptError(i, "timestamp value is null", nil)
		}
		if parsed.Text == nil {
			return transcript.Sequence{}, transcriptError(i, "missing text", nil)
		}
		chunk, err := transcript.NewChunk(*parsed.Timestamp[0], *parsed.Timestamp[1], *parsed.Text)
		if err != nil {
			return transcript.Sequence{}, transcriptError(i, "invalid timestamp", err)
		}
		chunks = append(chunks, chunk)
	}
	return transcript.NewSequence(chunks...), nil
}

// EncodeTranscript renders seq in the structured transcript layout. It is
// used when a transcript has to be persisted or cached.
func EncodeTranscript(seq transcript.Sequence) ([]byte, error) {
	type outChunk struct {
		Timestamp [2]float64 `json:"timestamp"`
		Text      string     `json:"text"`
	}
	out := struct {
		Text   string     `json:"text"`
		Chunks []outChunk `json:"chunks"`
	}{
		Text:   seq.JoinedText(),
		Chunks: make([]outChunk, 0, seq.Len()),
	}
	for _, c := range seq.Chunks() {
		start, end := c.Range()
		out.Chunks = append(out.Chunks, outChunk{Timestamp: [2]float64{start, end}, Text: c.Text()})
	}
	return json.Marshal(out)
}
