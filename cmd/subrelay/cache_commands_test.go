package main

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"subrelay/internal/testsupport"
	"subrelay/internal/transcriptcache"
)

func TestCacheListWithoutDatabase(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "Transcript cache is disabled")
	requireContains(t, out, "No cached transcripts")
	if _, err := os.Stat(env.cfg.TranscriptCachePath()); !os.IsNotExist(err) {
		t.Fatalf("listing must not create the cache database: %v", err)
	}
}

func TestCacheListAndClear(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithTranscriptCache())

	store, err := transcriptcache.Open(env.cfg.TranscriptCachePath())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	for _, hash := range []string{"aaaaaaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbbbbbb"} {
		entry := transcriptcache.Entry{
			Key:        transcriptcache.Key{MediaHash: hash, Model: "whisper", Device: "mps"},
			SourcePath: "/media/" + hash + ".mkv",
			Payload:    []byte(helloWorldTranscript),
			ChunkCount: 2,
			Language:   "zh",
		}
		if err := store.Put(context.Background(), entry); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, _, err := env.run(t, "cache", "list")
	if err != nil {
		t.Fatalf("cache list: %v", err)
	}
	requireContains(t, out, "aaaaaaaaaaaa")
	requireContains(t, out, "Total: 2 transcripts")

	out, _, err = env.run(t, "--json", "cache", "list")
	if err != nil {
		t.Fatalf("cache list --json: %v", err)
	}
	var listing struct {
		Enabled bool               `json:"enabled"`
		Entries []cacheEntryOutput `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if !listing.Enabled || len(listing.Entries) != 2 || listing.Entries[0].Chunks != 2 {
		t.Fatalf("unexpected listing %+v", listing)
	}

	out, _, err = env.run(t, "cache", "clear", "--hash", "aaaaaaaaaaaaaaaaaaaa")
	if err != nil {
		t.Fatalf("cache clear --hash: %v", err)
	}
	requireContains(t, out, "Removed 1 cached transcripts")

	out, _, err = env.run(t, "cache", "clear")
	if err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	requireContains(t, out, "Removed 1 cached transcripts")
}

func TestShortHash(t *testing.T) {
	if got := shortHash("abc"); got != "abc" {
		t.Fatalf("shortHash(abc) = %q", got)
	}
	if got := shortHash("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("unexpected short hash %q", got)
	}
}
