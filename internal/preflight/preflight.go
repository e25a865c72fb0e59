package preflight

import (
	"context"

	"subrelay/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks RunAll performs.
type Options struct {
	// SkipLLM omits the network round trip to the relay endpoint.
	SkipLLM bool
}

// RunAll executes the filesystem checks and, unless skipped, the relay
// health check for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckFreeSpace("Staging free space", cfg.Paths.StagingDir, minFreeBytes),
	}
	if cfg.Cache.TranscriptsEnabled {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}
	if !opts.SkipLLM && len(cfg.Translation.Languages) > 0 {
		results = append(results, CheckLLM(ctx, "Translation relay", cfg.LLM))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, result := range results {
		if !result.Passed {
			out = append(out, result)
		}
	}
	return out
}
