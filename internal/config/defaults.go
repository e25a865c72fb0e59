package config

const (
	defaultConfigPath          = "~/.config/subrelay/config.toml"
	defaultStagingDir          = "~/.local/share/subrelay/staging"
	defaultLogDir              = "~/.local/share/subrelay/logs"
	defaultCacheDir            = "~/.cache/subrelay"
	defaultTranscriberCommand  = "insanely-fast-whisper"
	defaultTranscriberModel    = "openai/whisper-large-v3"
	defaultTranscriberDevice   = "mps"
	defaultTranscriberTimeout  = 3600
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultSourceLanguage      = "zh"
	defaultPivotLanguage       = "en"
	defaultMaxConcurrency      = 4
	defaultRequestsPerMinute   = 120
	defaultScriptMapping       = ScriptMappingOpenCC
	defaultOpenCCProfile       = "s2t"
	defaultBaseSuffix          = "zh"
	defaultVariantSuffix       = "zh_hant"
	defaultLLMBaseURL          = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel            = "google/gemini-3-flash-preview"
	defaultLLMReferer          = "https://github.com/subrelay/subrelay"
	defaultLLMTitle            = "subrelay"
	defaultLLMTimeoutSeconds   = 60
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultStaleWorkHours      = 24
	defaultTranscriptsCache    = false
	defaultNtfyTimeoutSeconds  = 10
)

// Script mapping kinds.
const (
	ScriptMappingOpenCC   = "opencc"
	ScriptMappingTable    = "table"
	ScriptMappingIdentity = "identity"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			CacheDir:   defaultCacheDir,
		},
		Transcription: Transcription{
			Command:        defaultTranscriberCommand,
			Model:          defaultTranscriberModel,
			Device:         defaultTranscriberDevice,
			TimeoutSeconds: defaultTranscriberTimeout,
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
		},
		Translation: Translation{
			SourceLanguage:    defaultSourceLanguage,
			PivotLanguage:     defaultPivotLanguage,
			MaxConcurrency:    defaultMaxConcurrency,
			RequestsPerMinute: defaultRequestsPerMinute,
			Languages:         DefaultLanguages(),
		},
		Script: Script{
			Mapping:       defaultScriptMapping,
			OpenCCProfile: defaultOpenCCProfile,
			BaseSuffix:    defaultBaseSuffix,
			VariantSuffix: defaultVariantSuffix,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Cache: Cache{
			TranscriptsEnabled: defaultTranscriptsCache,
			StaleWorkHours:     defaultStaleWorkHours,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeoutSeconds,
		},
	}
}

// DefaultLanguages is the stock target table: English straight from Chinese,
// the rest relayed through English.
func DefaultLanguages() []Language {
	return []Language{
		{Code: "en", DisplayName: "English", From: "zh", To: "en"},
		{Code: "fr", DisplayName: "French", From: "en", To: "fr"},
		{Code: "es", DisplayName: "Spanish", From: "en", To: "es"},
		{Code: "ja", DisplayName: "Japanese", From: "en", To: "ja"},
		{Code: "ko", DisplayName: "Korean", From: "en", To: "ko"},
	}
}
