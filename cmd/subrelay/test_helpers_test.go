package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	"subrelay/internal/config"
	"subrelay/internal/testsupport"
)

const helloWorldTranscript = `{"text":"你好世界","chunks":[{"timestamp":[0.0,1.2],"text":"你好"},{"timestamp":[1.2,2.5],"text":"世界"}]}`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	llm        *fakeLLM
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	llm := newFakeLLM(t, map[string]string{
		"en|你好":    "hello",
		"en|世界":    "world",
		"fr|hello": "bonjour",
		"fr|world": "monde",
	})
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{
		testsupport.WithLLMKey("secret-key"),
		testsupport.WithLLMEndpoint(llm.server.URL),
	}, opts...)...)
	base := testsupport.BaseDir(cfg)

	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("SUBRELAY_LLM_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	configPath := filepath.Join(base, "subrelay.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base, llm: llm}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "[paths]\nstaging_dir = %q\nlog_dir = %q\ncache_dir = %q\n\n",
		cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.CacheDir)
	fmt.Fprintf(&b, "[transcription]\ncommand = %q\nffmpeg_binary = %q\nffprobe_binary = %q\n\n",
		cfg.Transcription.Command, cfg.Transcription.FFmpegBinary, cfg.Transcription.FFprobeBinary)
	fmt.Fprintf(&b, "[translation]\nsource_language = %q\npivot_language = %q\nrequests_per_minute = 0\n\n",
		cfg.Translation.SourceLanguage, cfg.Translation.PivotLanguage)
	for _, lang := range cfg.Translation.Languages {
		fmt.Fprintf(&b, "[[translation.languages]]\ncode = %q\nfrom = %q\nto = %q\n\n", lang.Code, lang.From, lang.To)
	}
	b.WriteString("[script]\nmapping = \"identity\"\n\n")
	fmt.Fprintf(&b, "[llm]\napi_key = %q\nbase_url = %q\n\n", cfg.LLM.APIKey, cfg.LLM.BaseURL)
	b.WriteString("[logging]\nlevel = \"error\"\n\n")
	fmt.Fprintf(&b, "[cache]\ntranscripts_enabled = %t\n\n", cfg.Cache.TranscriptsEnabled)
	if topic := cfg.Notifications.NtfyTopic; topic != "" {
		fmt.Fprintf(&b, "[notifications]\nntfy_topic = %q\n", topic)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// fakeLLM answers chat completions with dictionary translations keyed by
// "<target>|<text>". Unknown lines come back as "<target>:<text>".
type fakeLLM struct {
	server *httptest.Server
	dict   map[string]string
	calls  atomic.Int32
}

var (
	targetPattern = regexp.MustCompile(`Target language: .*\(([^)]+)\)`)
	linePattern   = regexp.MustCompile(`(?s)Subtitle line:\n(.*)$`)
)

func newFakeLLM(t *testing.T, dict map[string]string) *fakeLLM {
	t.Helper()
	f := &fakeLLM{dict: dict}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.calls.Add(1)
		prompt := ""
		if n := len(req.Messages); n > 0 {
			prompt = req.Messages[n-1].Content
		}
		content := `{"ok":true}`
		if target := targetPattern.FindStringSubmatch(prompt); target != nil {
			text := ""
			if line := linePattern.FindStringSubmatch(prompt); line != nil {
				text = strings.TrimSpace(line[1])
			}
			translated, ok := f.dict[target[1]+"|"+text]
			if !ok {
				translated = target[1] + ":" + text
			}
			encoded, _ := json.Marshal(map[string]string{"translation": translated})
			content = string(encoded)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(f.server.Close)
	return f
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
