package config

import (
	"errors"
	"fmt"
	"strings"

	"subrelay/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateTranslation(); err != nil {
		return err
	}
	if err := c.validateScript(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Cache.StaleWorkHours < 0 {
		return errors.New("cache.stale_work_hours must be >= 0")
	}
	if topic := c.Notifications.NtfyTopic; topic != "" &&
		!strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full http(s) URL, got %q", topic)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		return errors.New("paths.staging_dir must be set")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if c.Transcription.TimeoutSeconds <= 0 {
		return errors.New("transcription.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	tr := c.Translation
	if _, err := language.Canonical(tr.SourceLanguage); err != nil {
		return fmt.Errorf("translation.source_language: %w", err)
	}
	if _, err := language.Canonical(tr.PivotLanguage); err != nil {
		return fmt.Errorf("translation.pivot_language: %w", err)
	}
	if tr.SourceLanguage == tr.PivotLanguage {
		return errors.New("translation.pivot_language must differ from translation.source_language")
	}
	if tr.MaxConcurrency <= 0 {
		return errors.New("translation.max_concurrency must be positive")
	}
	if tr.RequestsPerMinute < 0 {
		return errors.New("translation.requests_per_minute must be >= 0 (0 disables throttling)")
	}

	seen := make(map[string]struct{}, len(tr.Languages))
	for i, lang := range tr.Languages {
		field := fmt.Sprintf("translation.languages[%d]", i)
		if lang.Code == "" {
			return fmt.Errorf("%s.code must be set", field)
		}
		if _, err := language.Canonical(lang.Code); err != nil {
			return fmt.Errorf("%s.code: %w", field, err)
		}
		if _, dup := seen[lang.Code]; dup {
			return fmt.Errorf("%s: duplicate language %q", field, lang.Code)
		}
		seen[lang.Code] = struct{}{}
		if lang.To != lang.Code {
			return fmt.Errorf("%s (%s): to must equal code, got %q", field, lang.Code, lang.To)
		}
		want := tr.PivotLanguage
		if lang.Code == tr.PivotLanguage {
			want = tr.SourceLanguage
		}
		if lang.From != want {
			return fmt.Errorf("%s (%s): from must be %q, got %q", field, lang.Code, want, lang.From)
		}
	}
	return nil
}

func (c *Config) validateScript() error {
	s := c.Script
	switch s.Mapping {
	case ScriptMappingOpenCC, ScriptMappingIdentity:
	case ScriptMappingTable:
		if s.TablePath == "" {
			return errors.New("script.table_path must be set when script.mapping is \"table\"")
		}
	default:
		return fmt.Errorf("script.mapping: unsupported value %q (want opencc, table or identity)", s.Mapping)
	}
	if s.BaseSuffix == s.VariantSuffix {
		return errors.New("script.base_suffix and script.variant_suffix must differ")
	}
	for _, lang := range c.Translation.Languages {
		if lang.Code == s.BaseSuffix || lang.Code == s.VariantSuffix {
			return fmt.Errorf("translation language %q collides with a script suffix", lang.Code)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
