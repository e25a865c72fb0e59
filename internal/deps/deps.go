// Package deps reports whether the external tools subrelay shells out to are
// installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"subrelay/internal/config"
)

// Requirement defines an external binary subrelay relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// Requirements lists the binaries a configuration needs. Media probing is
// optional because the pipeline only logs its result.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Transcriber",
			Command:     cfg.Transcription.Command,
			Description: "Speech-to-text for audio and video inputs",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Transcription.FFmpegBinary,
			Description: "Audio extraction from video containers",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Transcription.FFprobeBinary,
			Description: "Media metadata for logs",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch path, err := exec.LookPath(cmd); {
		case cmd == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		default:
			status.Available = true
			status.Path = path
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional requirements.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
