package srt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"subrelay/internal/transcript"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeLineFormat parses numbered cue blocks. Lines where a cue index is
// expected but which are not purely numeric are skipped, so decorative or
// stray lines between blocks do not fail the decode. Consecutive text lines
// of one cue are joined with "\n".
func DecodeLineFormat(data []byte) (transcript.Sequence, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")

	var chunks []transcript.Chunk
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || !isCueIndex(line) {
			i++
			continue
		}
		if i+1 >= len(lines) {
			break
		}
		rangeLine := strings.TrimSpace(lines[i+1])
		start, end, err := ParseRange(rangeLine)
		if err != nil {
			if strings.Contains(rangeLine, "-->") {
				return transcript.Sequence{}, lineError(i+2, "invalid time range", err)
			}
			// A numeric line without a range is treated like any other stray line.
			i++
			continue
		}

		j := i + 2
		var text []string
		for j < len(lines) {
			candidate := strings.TrimSpace(lines[j])
			if candidate == "" || startsCue(lines, j) {
				break
			}
			text = append(text, candidate)
			j++
		}

		chunk, err := transcript.NewChunk(start, end, strings.Join(text, "\n"))
		if err != nil {
			return transcript.Sequence{}, lineError(i+2, "invalid cue", err)
		}
		chunks = append(chunks, chunk)
		i = j
	}
	return transcript.NewSequence(chunks...), nil
}

// Encode renders seq in the canonical line format: cues renumbered 1..N,
// text trimmed, and a blank line after every cue.
func Encode(seq transcript.Sequence) []byte {
	var buf bytes.Buffer
	for i, c := range seq.Chunks() {
		start, end := c.Range()
		buf.WriteString(strconv.Itoa(i + 1))
		buf.WriteByte('\n')
		buf.WriteString(FormatRange(start, end))
		buf.WriteByte('\n')
		buf.WriteString(cueText(c.Text()))
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}

// cueText trims the text and drops blank interior lines, which would
// otherwise terminate the cue early.
func cueText(text string) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if !strings.Contains(text, "\n") {
		return text
	}
	parts := strings.Split(text, "\n")
	kept := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func isCueIndex(line string) bool {
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return line != ""
}

func startsCue(lines []string, i int) bool {
	if i+1 >= len(lines) || !isCueIndex(strings.TrimSpace(lines[i])) {
		return false
	}
	_, _, err := ParseRange(strings.TrimSpace(lines[i+1]))
	return err == nil
}

// CountCues returns the number of non-empty blocks in line-format content.
func CountCues(data []byte) int {
	content := strings.TrimSpace(strings.ReplaceAll(string(data), "\r\n", "\n"))
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Bounds returns the earliest start and latest end across all parseable
// time-range lines.
func Bounds(data []byte) (first, last float64, found bool) {
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "-->") {
			continue
		}
		start, end, err := ParseRange(strings.TrimSpace(line))
		if err != nil {
			continue
		}
		if !found || start < first {
			first = start
		}
		if end > last {
			last = end
		}
		found = true
	}
	return first, last, found
}

// durationSlack is how far the last cue may run past the media end before
// the file is flagged.
const durationSlack = 5.0

// Validate checks encoded content for obvious problems. An empty result
// means nothing was found. mediaSeconds <= 0 skips the duration check.
func Validate(data []byte, mediaSeconds float64) []string {
	var issues []string
	if CountCues(data) == 0 {
		return append(issues, "empty_subtitle_file")
	}
	_, last, found := Bounds(data)
	if !found {
		return append(issues, "no_valid_timestamps")
	}
	if mediaSeconds > 0 && last > mediaSeconds+durationSlack {
		issues = append(issues, fmt.Sprintf("duration_mismatch: last_cue=%.1fs media=%.1fs", last, mediaSeconds))
	}
	return issues
}
