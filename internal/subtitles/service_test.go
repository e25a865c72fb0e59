package subtitles

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"subrelay/internal/config"
	"subrelay/internal/media/ffprobe"
	"subrelay/internal/notifications"
	"subrelay/internal/script"
	"subrelay/internal/services"
	"subrelay/internal/services/whisper"
	"subrelay/internal/subtitles/srt"
	"subrelay/internal/testsupport"
	"subrelay/internal/transcriptcache"
	"subrelay/internal/translation"
)

const helloWorldTranscript = `{"text":"你好世界","chunks":[{"timestamp":[0.0,1.2],"text":"你好"},{"timestamp":[1.2,2.5],"text":"世界"}]}`

var englishOnly = config.Language{Code: "en", DisplayName: "English", From: "zh", To: "en"}

type dictRelay struct {
	mu    sync.Mutex
	dict  map[string]string
	fail  map[string]bool
	calls []string
	hook  func(ctx context.Context, text, to string)
}

func newDictRelay(pairs ...string) *dictRelay {
	r := &dictRelay{dict: map[string]string{}, fail: map[string]bool{}}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.dict[pairs[i]] = pairs[i+1]
	}
	return r
}

func (r *dictRelay) Relay(ctx context.Context, text, from, to string) (string, error) {
	if r.hook != nil {
		r.hook(ctx, text, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, from+">"+to+":"+text)
	if r.fail[text] {
		return "", errors.New("relay unavailable")
	}
	key := to + ":" + text
	if out, ok := r.dict[key]; ok {
		return out, nil
	}
	return "[" + to + "]" + text, nil
}

func (r *dictRelay) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type fakeTranscriber struct {
	payload string
	err     error
	calls   atomic.Int32
	last    whisper.Request
}

func (f *fakeTranscriber) Transcribe(_ context.Context, req whisper.Request) (string, error) {
	f.calls.Add(1)
	f.last = req
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(req.OutputPath, []byte(f.payload), 0o644); err != nil {
		return "", err
	}
	return req.OutputPath, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []notifications.RunSummary
	failed    []error
}

func (f *fakeNotifier) NotifyRunCompleted(_ context.Context, summary notifications.RunSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, summary)
	return nil
}

func (f *fakeNotifier) NotifyRunFailed(_ context.Context, _ string, err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, err)
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

type fakeExtractor struct {
	calls atomic.Int32
	err   error
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, _, dest string) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("RIFF"), 0o644)
}

type fakeProber struct {
	err error
}

func (f fakeProber) Probe(context.Context, string) (ffprobe.Result, error) {
	if f.err != nil {
		return ffprobe.Result{}, f.err
	}
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{Index: 0, CodecType: "audio", CodecName: "aac"}},
		Format:  ffprobe.Format{Duration: "2.5", FormatName: "matroska"},
	}, nil
}

type harness struct {
	cfg         *config.Config
	svc         *Service
	relay       *dictRelay
	transcriber *fakeTranscriber
	extractor   *fakeExtractor
	dir         string
}

func newHarness(t *testing.T, cfgOpts []testsupport.ConfigOption, opts ...ServiceOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, cfgOpts...)
	h := &harness{
		cfg:         cfg,
		relay:       newDictRelay("en:你好", "hello", "en:世界", "world"),
		transcriber: &fakeTranscriber{payload: helloWorldTranscript},
		extractor:   &fakeExtractor{},
		dir:         t.TempDir(),
	}
	base := []ServiceOption{
		WithRelay(h.relay),
		WithTranscriber(h.transcriber),
		WithAudioExtractor(h.extractor),
		WithMediaProber(fakeProber{}),
		WithVariantMapping(script.Identity),
		WithRunIDGenerator(func() string { return "run-test" }),
	}
	svc, err := NewService(cfg, nil, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	h.svc = svc
	return h
}

func (h *harness) input(t *testing.T, name, content string) string {
	t.Helper()
	return testsupport.WriteText(t, filepath.Join(h.dir, name), content)
}

func TestGenerateEndToEndTranscript(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "episode.json", helloWorldTranscript)

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:01,200\nhello\n\n2\n00:00:01,200 --> 00:00:02,500\nworld\n\n"
	enPath := filepath.Join(h.dir, "episode_en.srt")
	if got := result.Paths["en"]; got != enPath {
		t.Fatalf("en path = %q, want %q", got, enPath)
	}
	if got := testsupport.ReadText(t, enPath); got != want {
		t.Fatalf("en output mismatch:\n%s\nwant:\n%s", got, want)
	}

	zh := testsupport.ReadText(t, filepath.Join(h.dir, "episode_zh.srt"))
	if !strings.Contains(zh, "你好") || !strings.Contains(zh, "00:00:01,200 --> 00:00:02,500") {
		t.Fatalf("unexpected zh output:\n%s", zh)
	}
	if _, ok := result.Paths["zh_hant"]; !ok {
		t.Fatalf("expected converted variant in %v", result.Paths)
	}
	if len(result.Branches) != 3 || result.ChunkCount != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if h.transcriber.calls.Load() != 0 {
		t.Fatal("transcript input must not invoke the transcriber")
	}
	if result.RunID != "run-test" || result.InputKind != InputTranscript {
		t.Fatalf("unexpected run metadata %+v", result)
	}
}

func TestGenerateSharesPivotAcrossBranches(t *testing.T) {
	langs := []config.Language{
		englishOnly,
		{Code: "fr", From: "en", To: "fr"},
		{Code: "ja", From: "en", To: "ja"},
	}
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(langs...)})
	input := h.input(t, "show.json", helloWorldTranscript)

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Paths) != 5 {
		t.Fatalf("expected 5 outputs, got %v", result.Paths)
	}
	// Two to-pivot calls shared by all branches, plus two from-pivot calls per
	// non-pivot language.
	if got := h.relay.callCount(); got != 6 {
		t.Fatalf("relay calls = %d, want 6 (%v)", got, h.relay.calls)
	}
	fr := testsupport.ReadText(t, result.Paths["fr"])
	if !strings.Contains(fr, "[fr]hello") || !strings.Contains(fr, "[fr]world") {
		t.Fatalf("unexpected fr output:\n%s", fr)
	}
}

func TestGenerateMediaInputTranscribesAndCleansUp(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "movie.mkv", "video")

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, Device: "cuda:0"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if h.extractor.calls.Load() != 1 || h.transcriber.calls.Load() != 1 {
		t.Fatalf("expected extract + transcribe, got %d/%d", h.extractor.calls.Load(), h.transcriber.calls.Load())
	}
	if h.transcriber.last.Device != "cuda:0" || h.transcriber.last.Model != h.cfg.Transcription.Model {
		t.Fatalf("unexpected transcriber request %+v", h.transcriber.last)
	}
	if !strings.HasSuffix(h.transcriber.last.AudioPath, "audio.wav") {
		t.Fatalf("expected extracted audio, got %q", h.transcriber.last.AudioPath)
	}
	if result.MediaDuration != 2.5 {
		t.Fatalf("media duration = %v", result.MediaDuration)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.WorkRoot(), "run-test")); !os.IsNotExist(err) {
		t.Fatalf("work directory should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(input); err != nil {
		t.Fatalf("input must survive cleanup: %v", err)
	}
	if got := testsupport.ReadText(t, result.Paths["en"]); !strings.Contains(got, "hello") {
		t.Fatalf("unexpected en output:\n%s", got)
	}
}

func TestGenerateAudioInputSkipsExtraction(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "clip.wav", "RIFF")

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, KeepIntermediates: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if h.extractor.calls.Load() != 0 {
		t.Fatal("audio input must not be extracted")
	}
	if h.transcriber.last.AudioPath != input {
		t.Fatalf("transcriber audio = %q, want %q", h.transcriber.last.AudioPath, input)
	}
	if len(result.Intermediates) != 1 || !strings.HasSuffix(result.Intermediates[0], "transcript.json") {
		t.Fatalf("expected kept transcript, got %v", result.Intermediates)
	}
	if _, err := os.Stat(result.Intermediates[0]); err != nil {
		t.Fatalf("kept intermediate missing: %v", err)
	}
}

func TestGenerateTranscriptionFailureIsFatal(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	h.transcriber.err = &whisper.TranscriptionError{Command: "insanely-fast-whisper", ExitCode: 2, Stderr: "CUDA out of memory"}
	input := h.input(t, "movie.mp4", "video")

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	var transcriptionErr *whisper.TranscriptionError
	if !errors.As(err, &transcriptionErr) {
		t.Fatalf("expected TranscriptionError, got %v", err)
	}
	if len(result.Paths) != 0 {
		t.Fatalf("no outputs expected, got %v", result.Paths)
	}
	matches, _ := filepath.Glob(filepath.Join(h.dir, "*.srt"))
	if len(matches) != 0 {
		t.Fatalf("no files expected, found %v", matches)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.WorkRoot(), "run-test")); !os.IsNotExist(err) {
		t.Fatal("work directory should be cleaned after failure")
	}
}

func TestGenerateDecodeFailureIsFatal(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "broken.json", `{"chunks":[{"timestamp":[1.0],"text":"x"}]}`)

	_, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	var formatErr *srt.FormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", err)
	}
	if h.relay.callCount() != 0 {
		t.Fatal("no translation expected after decode failure")
	}
}

func TestGenerateMissingChunksWritesEmptyOutputs(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "silent.json", `{"text":""}`)

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(result.Paths) != 3 {
		t.Fatalf("expected all branches written, got %v", result.Paths)
	}
	if got := testsupport.ReadText(t, result.Paths["en"]); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestGenerateSRTInputWithLanguageFilter(t *testing.T) {
	langs := []config.Language{englishOnly, {Code: "fr", From: "en", To: "fr"}}
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(langs...)})
	input := h.input(t, "ep.srt", "1\n00:00:00,000 --> 00:00:01,200\n你好\n\n2\n00:00:01,200 --> 00:00:02,500\n世界\n")

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, Languages: []string{"FR", "xx"}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, ok := result.Paths["en"]; ok {
		t.Fatal("en was filtered out")
	}
	if _, ok := result.Paths["fr"]; !ok {
		t.Fatalf("expected fr output, got %v", result.Paths)
	}
	failed := result.FailedBranches()
	if len(failed) != 1 || failed[0].Name != "xx" {
		t.Fatalf("expected xx to fail, got %+v", failed)
	}
	var unsupported *translation.UnsupportedLanguageError
	if !errors.As(failed[0].Err, &unsupported) {
		t.Fatalf("expected UnsupportedLanguageError, got %v", failed[0].Err)
	}
}

func TestGenerateRejectsFilterMatchingScriptBranch(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "ep.json", helloWorldTranscript)

	for _, code := range []string{"zh", "zh_Hant"} {
		result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, Languages: []string{code}})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("Generate(%s): expected validation error, got %v", code, err)
		}
		if len(result.Paths) != 0 || len(result.Branches) != 0 {
			t.Fatalf("Generate(%s): expected no branches, got %+v", code, result.Branches)
		}
	}
	if h.relay.callCount() != 0 {
		t.Fatal("rejected filters must not reach the relay")
	}
}

func TestGenerateChunkFailureDegradesOnlyThatChunk(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	h.relay.fail["世界"] = true
	input := h.input(t, "ep.json", helloWorldTranscript)

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var en BranchResult
	for _, b := range result.Branches {
		if b.Name == "en" {
			en = b
		}
	}
	if en.Failed() || en.FailedChunks != 1 {
		t.Fatalf("unexpected en branch %+v", en)
	}
	want := "1\n00:00:00,000 --> 00:00:01,200\nhello\n\n2\n00:00:01,200 --> 00:00:02,500\n\n\n"
	if got := testsupport.ReadText(t, en.Path); got != want {
		t.Fatalf("en output = %q, want %q", got, want)
	}
}

func TestGenerateNeverOverwritesInput(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	original := "1\n00:00:00,000 --> 00:00:01,000\n你好\n"
	input := h.input(t, "show_zh.srt", original)

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, BaseName: "show"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Paths["zh"] != input {
		t.Fatalf("zh should map to the input, got %q", result.Paths["zh"])
	}
	if got := testsupport.ReadText(t, input); got != original {
		t.Fatalf("input was modified: %q", got)
	}
}

func TestGenerateOutputDir(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "ep.json", helloWorldTranscript)
	outDir := filepath.Join(t.TempDir(), "subs", "nested")

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, OutputDir: outDir})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Paths["en"] != filepath.Join(outDir, "ep_en.srt") {
		t.Fatalf("unexpected path %q", result.Paths["en"])
	}
}

func TestGenerateMissingInput(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: filepath.Join(h.dir, "nope.mkv")})
	var ioErr *IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected IOError wrapping ErrNotExist, got %v", err)
	}
	if h.transcriber.calls.Load() != 0 {
		t.Fatal("missing input must not reach the transcriber")
	}
}

func TestGenerateUnsupportedInputType(t *testing.T) {
	h := newHarness(t, nil)
	input := h.input(t, "notes.txt", "hello")
	_, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGenerateProbeFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)},
		WithMediaProber(fakeProber{err: errors.New("ffprobe missing")}))
	input := h.input(t, "clip.mp3", "ID3")

	result, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.MediaDuration != 0 || len(result.Paths) != 3 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestGenerateCancelledDuringFanoutStillCleansUp(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.relay.hook = func(context.Context, string, string) { cancel() }
	input := h.input(t, "movie.mkv", "video")

	result, err := h.svc.Generate(ctx, GenerateRequest{InputPath: input})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Paths) != 0 {
		t.Fatalf("no outputs expected after cancel, got %v", result.Paths)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.WorkRoot(), "run-test")); !os.IsNotExist(err) {
		t.Fatal("work directory should be removed after cancel")
	}
}

func TestGenerateNotifiesOutcome(t *testing.T) {
	notifier := &fakeNotifier{}
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)}, WithNotifier(notifier))

	if _, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: h.input(t, "ok.json", helloWorldTranscript)}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(notifier.completed) != 1 {
		t.Fatalf("expected one completion notice, got %d", len(notifier.completed))
	}
	summary := notifier.completed[0]
	if strings.Join(summary.Written, ",") != "zh,zh_hant,en" || len(summary.Failed) != 0 || summary.Chunks != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if _, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: h.input(t, "bad.json", "{")}); err == nil {
		t.Fatal("expected decode failure")
	}
	if len(notifier.failed) != 1 {
		t.Fatalf("expected one failure notice, got %d", len(notifier.failed))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = h.svc.Generate(ctx, GenerateRequest{InputPath: h.input(t, "late.json", helloWorldTranscript)})
	if len(notifier.completed) != 1 || len(notifier.failed) != 1 {
		t.Fatal("cancelled runs must not notify")
	}
}

func TestGenerateTranscriptCacheReuse(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly), testsupport.WithTranscriptCache()})
	store, err := transcriptcache.Open(h.cfg.TranscriptCachePath())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	h.svc.transcripts = store
	input := h.input(t, "movie.mkv", "video-bytes")

	first, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	second, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if first.TranscriptCached || !second.TranscriptCached {
		t.Fatalf("expected miss then hit, got %v/%v", first.TranscriptCached, second.TranscriptCached)
	}
	if h.transcriber.calls.Load() != 1 || h.extractor.calls.Load() != 1 {
		t.Fatalf("transcriber should run once, got %d", h.transcriber.calls.Load())
	}

	if _, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input, Model: "other"}); err != nil {
		t.Fatalf("third Generate: %v", err)
	}
	if h.transcriber.calls.Load() != 2 {
		t.Fatal("a different model must not reuse the cached transcript")
	}
}

func TestGenerateRejectsConcurrentRunForSameBase(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	input := h.input(t, "ep.json", helloWorldTranscript)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	h.relay.hook = func(context.Context, string, string) {
		once.Do(func() {
			close(started)
			<-release
		})
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
		done <- err
	}()
	<-started
	_, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input})
	close(release)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected lock contention error, got %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}
}

func TestGenerateWritesMetricsTextfile(t *testing.T) {
	h := newHarness(t, []testsupport.ConfigOption{testsupport.WithLanguages(englishOnly)})
	h.cfg.Metrics.TextfilePath = filepath.Join(t.TempDir(), "subrelay.prom")
	input := h.input(t, "ep.json", helloWorldTranscript)

	if _, err := h.svc.Generate(context.Background(), GenerateRequest{InputPath: input}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data := testsupport.ReadText(t, h.cfg.Metrics.TextfilePath)
	for _, want := range []string{
		`subrelay_branch_outcomes_total{branch="en",outcome="written"} 1`,
		`subrelay_relay_calls_total{leg="to-pivot",result="ok"} 2`,
	} {
		if !strings.Contains(data, want) {
			t.Fatalf("metrics missing %q:\n%s", want, data)
		}
	}
}

func TestClassifyInput(t *testing.T) {
	cases := map[string]InputKind{
		"a.JSON": InputTranscript,
		"a.srt":  InputLineFormat,
		"a.flac": InputAudio,
		"a.MKV":  InputVideo,
	}
	for path, want := range cases {
		got, err := ClassifyInput(path)
		if err != nil || got != want {
			t.Errorf("ClassifyInput(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
	if _, err := ClassifyInput("a.docx"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestVariantMapping(t *testing.T) {
	cfg := config.Default().Script
	cfg.Mapping = config.ScriptMappingIdentity
	m, err := VariantMapping(cfg, nil)
	if err != nil || !script.IsIdentity(m) {
		t.Fatalf("expected identity, got %v %v", m, err)
	}

	table := filepath.Join(t.TempDir(), "table.toml")
	testsupport.WriteText(t, table, "\"们\" = \"們\"\n")
	cfg.Mapping = config.ScriptMappingTable
	cfg.TablePath = table
	m, err = VariantMapping(cfg, nil)
	if err != nil {
		t.Fatalf("table mapping: %v", err)
	}
	if got := m.Map("我们"); got != "我們" {
		t.Fatalf("Map = %q", got)
	}

	cfg.Mapping = "bogus"
	if _, err := VariantMapping(cfg, nil); err == nil {
		t.Fatal("expected error for unknown mapping")
	}
}

func TestEngineConfigRejectsBadEntries(t *testing.T) {
	cfg := config.Default().Translation
	cfg.Languages = append(cfg.Languages, config.Language{Code: "!!", From: "en"})
	if _, err := EngineConfig(cfg); err == nil {
		t.Fatal("expected error for invalid code")
	}
}

func ExampleBaseName() {
	fmt.Println(BaseName("/media/Show S01E01.mkv"))
	// Output: Show S01E01
}
