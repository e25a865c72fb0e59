package translation

import (
	"context"
	"strconv"

	"subrelay/internal/logging"
	"subrelay/internal/transcript"
)

// maxLoggedFailures bounds the chunk indices listed in a batch failure log.
const maxLoggedFailures = 5

// ChunkResult is the outcome of translating one chunk.
type ChunkResult struct {
	Index int
	Text  string
	Err   error
}

// Failed reports whether the chunk could not be translated.
func (r ChunkResult) Failed() bool { return r.Err != nil }

// BatchReport summarizes one TranslateSequence call.
type BatchReport struct {
	Language string
	Total    int
	Results  []ChunkResult
}

// Failures returns the failed chunk results in order.
func (r BatchReport) Failures() []ChunkResult {
	var out []ChunkResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// FailedCount returns how many chunks failed.
func (r BatchReport) FailedCount() int {
	count := 0
	for _, res := range r.Results {
		if res.Failed() {
			count++
		}
	}
	return count
}

// TranslateSequence translates every chunk of seq to target, in order. A
// failed chunk keeps its timestamps and gets empty text; failures are logged
// once for the whole batch. An unknown target fails before any relay call.
// The context is checked before each chunk; on cancellation the context error
// is returned and no sequence is produced.
func (e *Engine) TranslateSequence(ctx context.Context, seq transcript.Sequence, target string) (transcript.Sequence, BatchReport, error) {
	spec, err := e.Lookup(target)
	if err != nil {
		return transcript.Sequence{}, BatchReport{Language: target}, err
	}

	report := BatchReport{Language: spec.Code, Total: seq.Len(), Results: make([]ChunkResult, seq.Len())}
	for i := 0; i < seq.Len(); i++ {
		if err := ctx.Err(); err != nil {
			report.Results = report.Results[:i]
			return transcript.Sequence{}, report, err
		}
		text, err := e.translate(ctx, seq.At(i).Text(), spec)
		report.Results[i] = ChunkResult{Index: i, Text: text, Err: err}
	}

	out := seq.Map(func(i int, chunk transcript.Chunk) transcript.Chunk {
		return chunk.WithText(report.Results[i].Text)
	})

	if failed := report.FailedCount(); failed > 0 {
		e.observer.ChunksFailed(spec.Code, failed)
		e.logBatchFailures(ctx, report, failed)
	}
	return out, report, nil
}

func (e *Engine) logBatchFailures(ctx context.Context, report BatchReport, failed int) {
	failures := report.Failures()
	sample := make([]string, 0, maxLoggedFailures)
	for _, res := range failures {
		if len(sample) == maxLoggedFailures {
			break
		}
		sample = append(sample, strconv.Itoa(res.Index+1))
	}
	logger := logging.WithContext(ctx, e.logger)
	logging.WarnWithContext(logger, "translation batch completed with failed chunks", "translation_chunks_failed",
		logging.String("language", report.Language),
		logging.Int("failed_chunks", failed),
		logging.Int("total_chunks", report.Total),
		logging.Strings("sample_cues", sample),
		logging.String("first_error", failures[0].Err.Error()),
		logging.String(logging.FieldImpact, "failed cues are written with empty text"),
		logging.String(logging.FieldErrorHint, "check relay connectivity and rerun to fill the gaps"),
	)
}

