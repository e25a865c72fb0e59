package subtitles

import (
	"fmt"
	"path/filepath"
	"strings"

	"subrelay/internal/services"
)

// InputKind classifies what a run starts from.
type InputKind string

const (
	InputTranscript InputKind = "transcript"
	InputLineFormat InputKind = "srt"
	InputAudio      InputKind = "audio"
	InputVideo      InputKind = "video"
)

var inputKinds = map[string]InputKind{
	".json": InputTranscript,
	".srt":  InputLineFormat,
	".wav":  InputAudio,
	".mp3":  InputAudio,
	".flac": InputAudio,
	".m4a":  InputAudio,
	".aac":  InputAudio,
	".ogg":  InputAudio,
	".opus": InputAudio,
	".mp4":  InputVideo,
	".mov":  InputVideo,
	".avi":  InputVideo,
	".mkv":  InputVideo,
	".webm": InputVideo,
	".m4v":  InputVideo,
	".ts":   InputVideo,
}

// NeedsTranscription reports whether the kind has to go through the
// transcriber before decoding.
func (k InputKind) NeedsTranscription() bool {
	return k == InputAudio || k == InputVideo
}

// ClassifyInput picks the input kind from the file extension.
func ClassifyInput(path string) (InputKind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := inputKinds[ext]; ok {
		return kind, nil
	}
	return "", services.Wrap(
		services.ErrValidation,
		"subtitles",
		"classify input",
		fmt.Sprintf("Unsupported input type %q (expected media, .json transcript or .srt)", ext),
		nil,
	)
}

// BaseName returns the input file name without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
