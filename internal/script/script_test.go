package script

import (
	"os"
	"path/filepath"
	"testing"

	"subrelay/internal/transcript"
)

func TestConvertIdentityReturnsInput(t *testing.T) {
	seq := transcript.NewSequence(transcript.MustChunk(0, 1, "你好"))
	if got := Convert(seq, Identity); !got.Equal(seq) {
		t.Fatalf("identity changed sequence: %v", got.Texts())
	}
	if got := Convert(seq, nil); !got.Equal(seq) {
		t.Fatalf("nil mapping changed sequence: %v", got.Texts())
	}
}

func TestConvertAppliesTableAndKeepsTiming(t *testing.T) {
	table := NewTable("demo", map[string]string{
		"发":  "發",
		"头发": "頭髮",
		"们":  "們",
	})
	seq := transcript.NewSequence(
		transcript.MustChunk(0, 1.5, "头发 发 我们"),
		transcript.MustChunk(1.5, 2, "abc"),
	)
	got := Convert(seq, table)

	if got.At(0).Text() != "頭髮 發 我們" {
		t.Fatalf("unexpected conversion %q", got.At(0).Text())
	}
	if got.At(1).Text() != "abc" {
		t.Fatalf("unmapped text changed: %q", got.At(1).Text())
	}
	for i := 0; i < seq.Len(); i++ {
		s1, e1 := seq.At(i).Range()
		s2, e2 := got.At(i).Range()
		if s1 != s2 || e1 != e2 {
			t.Fatalf("chunk %d timing changed", i)
		}
	}
	if seq.At(0).Text() != "头发 发 我们" {
		t.Fatal("source sequence mutated")
	}
}

func TestLoadTable(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "variants.toml")
	if err := os.WriteFile(tomlPath, []byte("[phrases]\n\"简\" = \"簡\"\n"), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	jsonPath := filepath.Join(dir, "flat.json")
	if err := os.WriteFile(jsonPath, []byte(`{"体":"體"}`), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	table, err := LoadTable(tomlPath)
	if err != nil {
		t.Fatalf("LoadTable toml: %v", err)
	}
	if table.Map("简单") != "簡单" || table.Name() != "variants" {
		t.Fatalf("unexpected toml table: %q %q", table.Map("简单"), table.Name())
	}

	table, err = LoadTable(jsonPath)
	if err != nil {
		t.Fatalf("LoadTable json: %v", err)
	}
	if table.Len() != 1 || table.Map("身体") != "身體" {
		t.Fatalf("unexpected json table: %q", table.Map("身体"))
	}

	if _, err := LoadTable(filepath.Join(dir, "table.yaml")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}
