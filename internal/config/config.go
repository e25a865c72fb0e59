package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
	CacheDir   string `toml:"cache_dir"`
}

// Transcription configures the external speech-to-text process and the
// media tools that feed it.
type Transcription struct {
	Command        string `toml:"command"`
	Model          string `toml:"model"`
	Device         string `toml:"device"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	FFmpegBinary   string `toml:"ffmpeg_binary"`
	FFprobeBinary  string `toml:"ffprobe_binary"`
}

// Language is one [[translation.languages]] entry. From and To describe the
// relay leg that produces this language; entries other than the pivot must
// relay from the pivot language.
type Language struct {
	Code        string `toml:"code"`
	DisplayName string `toml:"display_name"`
	From        string `toml:"from"`
	To          string `toml:"to"`
}

// Translation configures the pivot relay and the target language set.
type Translation struct {
	SourceLanguage    string     `toml:"source_language"`
	PivotLanguage     string     `toml:"pivot_language"`
	MaxConcurrency    int        `toml:"max_concurrency"`
	RequestsPerMinute int        `toml:"requests_per_minute"`
	Languages         []Language `toml:"languages"`
}

// Script configures the converted script variant branch.
type Script struct {
	// Mapping is "opencc", "table" or "identity".
	Mapping       string `toml:"mapping"`
	OpenCCProfile string `toml:"opencc_profile"`
	TablePath     string `toml:"table_path"`
	BaseSuffix    string `toml:"base_suffix"`
	VariantSuffix string `toml:"variant_suffix"`
}

// LLM contains the chat completion settings used as the translation relay.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Cache configures the persisted transcript cache.
type Cache struct {
	TranscriptsEnabled bool   `toml:"transcripts_enabled"`
	Path               string `toml:"path"`
	StaleWorkHours     int    `toml:"stale_work_hours"`
}

// Metrics configures the Prometheus textfile export.
type Metrics struct {
	TextfilePath string `toml:"textfile_path"`
}

// Notifications configures ntfy push messages for finished runs.
type Notifications struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Config encapsulates all configuration values for subrelay.
//
// Configuration sections by subsystem:
//   - Paths: staging, log and cache directories
//   - Transcription: speech-to-text command, model, device and media tools
//   - Translation: source and pivot languages plus the target language table
//   - Script: the converted script variant branch
//   - LLM: chat completion endpoint used as the translation relay
//   - Logging: log format and level
//   - Cache: persisted transcript reuse and work dir sweeping
//   - Metrics: optional node-exporter textfile output
//   - Notifications: optional ntfy topic for run outcomes
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Script        Script        `toml:"script"`
	LLM           LLM           `toml:"llm"`
	Logging       Logging       `toml:"logging"`
	Cache         Cache         `toml:"cache"`
	Metrics       Metrics       `toml:"metrics"`
	Notifications Notifications `toml:"notifications"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file next to the config (or in the
// working directory) is loaded first so environment fallbacks can come from it.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	loadDotEnv(filepath.Join(filepath.Dir(resolvedPath), ".env"), ".env")

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		// Array tables append to a populated slice, so the default language
		// table only applies when the file declares none.
		cfg.Translation.Languages = nil
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
		if cfg.Translation.Languages == nil {
			cfg.Translation.Languages = DefaultLanguages()
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv loads the first existing .env file. Variables already present in
// the environment win; a missing file is not an error.
func loadDotEnv(candidates ...string) {
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(candidate)
			return
		}
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subrelay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the staging, log and cache directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// WorkRoot is the staging subdirectory holding per-run work directories.
func (c *Config) WorkRoot() string {
	return filepath.Join(c.Paths.StagingDir, "work")
}

// LockDir is the staging subdirectory holding per-input lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.StagingDir, "locks")
}

// TranscriptCachePath returns the sqlite transcript cache location.
func (c *Config) TranscriptCachePath() string {
	if strings.TrimSpace(c.Cache.Path) != "" {
		return c.Cache.Path
	}
	return filepath.Join(c.Paths.CacheDir, "transcripts.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// LanguageByCode returns the configured language entry for code.
func (c *Config) LanguageByCode(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, lang := range c.Translation.Languages {
		if lang.Code == code {
			return lang, true
		}
	}
	return Language{}, false
}
