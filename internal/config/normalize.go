package config

import (
	"fmt"
	"os"
	"strings"

	"subrelay/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeTranslation()
	if err := c.normalizeScript(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeLogging()
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeoutSeconds <= 0 {
		c.Notifications.RequestTimeoutSeconds = defaultNtfyTimeoutSeconds
	}
	return c.normalizeCache()
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Command = strings.TrimSpace(t.Command)
	if t.Command == "" {
		t.Command = defaultTranscriberCommand
	}
	t.Model = strings.TrimSpace(t.Model)
	if t.Model == "" {
		t.Model = defaultTranscriberModel
	}
	t.Device = strings.TrimSpace(t.Device)
	if t.Device == "" {
		t.Device = defaultTranscriberDevice
	}
	t.FFmpegBinary = strings.TrimSpace(t.FFmpegBinary)
	if t.FFmpegBinary == "" {
		t.FFmpegBinary = defaultFFmpegBinary
	}
	t.FFprobeBinary = strings.TrimSpace(t.FFprobeBinary)
	if t.FFprobeBinary == "" {
		t.FFprobeBinary = defaultFFprobeBinary
	}
}

// normalizeTranslation lower-cases codes and fills omitted relay legs: the
// pivot language relays from the source, everything else from the pivot.
func (c *Config) normalizeTranslation() {
	tr := &c.Translation
	tr.SourceLanguage = language.Key(tr.SourceLanguage)
	if tr.SourceLanguage == "" {
		tr.SourceLanguage = defaultSourceLanguage
	}
	tr.PivotLanguage = language.Key(tr.PivotLanguage)
	if tr.PivotLanguage == "" {
		tr.PivotLanguage = defaultPivotLanguage
	}
	for i := range tr.Languages {
		lang := &tr.Languages[i]
		lang.Code = language.Key(lang.Code)
		lang.From = language.Key(lang.From)
		lang.To = language.Key(lang.To)
		lang.DisplayName = strings.TrimSpace(lang.DisplayName)
		if lang.To == "" {
			lang.To = lang.Code
		}
		if lang.From == "" {
			if lang.Code == tr.PivotLanguage {
				lang.From = tr.SourceLanguage
			} else {
				lang.From = tr.PivotLanguage
			}
		}
		if lang.DisplayName == "" && lang.Code != "" {
			lang.DisplayName = language.DisplayName(lang.Code)
		}
	}
}

func (c *Config) normalizeScript() error {
	s := &c.Script
	s.Mapping = strings.ToLower(strings.TrimSpace(s.Mapping))
	if s.Mapping == "" {
		s.Mapping = defaultScriptMapping
	}
	s.OpenCCProfile = strings.TrimSpace(s.OpenCCProfile)
	if s.OpenCCProfile == "" {
		s.OpenCCProfile = defaultOpenCCProfile
	}
	s.BaseSuffix = strings.TrimSpace(s.BaseSuffix)
	if s.BaseSuffix == "" {
		s.BaseSuffix = defaultBaseSuffix
	}
	s.VariantSuffix = strings.TrimSpace(s.VariantSuffix)
	if s.VariantSuffix == "" {
		s.VariantSuffix = defaultVariantSuffix
	}
	if strings.TrimSpace(s.TablePath) == "" {
		s.TablePath = ""
		return nil
	}
	var err error
	if s.TablePath, err = expandPath(s.TablePath); err != nil {
		return fmt.Errorf("script.table_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		for _, key := range []string{"SUBRELAY_LLM_API_KEY", "OPENROUTER_API_KEY"} {
			if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
				c.LLM.APIKey = strings.TrimSpace(value)
				break
			}
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) != "" {
		var err error
		if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
			return fmt.Errorf("cache.path: %w", err)
		}
	}
	if strings.TrimSpace(c.Metrics.TextfilePath) != "" {
		var err error
		if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
			return fmt.Errorf("metrics.textfile_path: %w", err)
		}
	}
	return nil
}
