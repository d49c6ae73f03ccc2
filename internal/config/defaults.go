package config

const (
	defaultPDFDir         = "PDF"
	defaultAudioDir       = "Audio"
	defaultTextDir        = "TXT"
	defaultPDFOutputDir   = "OCR_Results"
	defaultAudioOutputDir = "Transcriptions"
	defaultTextOutputDir  = "Summaries_TXT"
	defaultLogDir         = "log"
	defaultPromptsDir     = "prompts"

	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com"
	defaultGeminiModel          = "gemini-2.5-pro"
	defaultGeminiTimeoutSeconds = 300
	defaultUploadPollSeconds    = 1
	defaultUploadWaitSeconds    = 60
	defaultTemperature          = 0.2
	defaultMaxOutputTokens      = 65535

	defaultInlineMaxMB      = 20
	defaultMaxRetries       = 3
	defaultRetryBaseSeconds = 2
	defaultSegmentMinutes   = 10
	defaultResultColumn     = "OCR"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			PDFDir:         defaultPDFDir,
			AudioDir:       defaultAudioDir,
			TextDir:        defaultTextDir,
			PDFOutputDir:   defaultPDFOutputDir,
			AudioOutputDir: defaultAudioOutputDir,
			TextOutputDir:  defaultTextOutputDir,
			LogDir:         defaultLogDir,
			PromptsDir:     defaultPromptsDir,
		},
		Gemini: Gemini{
			BaseURL:           defaultGeminiBaseURL,
			Model:             defaultGeminiModel,
			TimeoutSeconds:    defaultGeminiTimeoutSeconds,
			UploadPollSeconds: defaultUploadPollSeconds,
			UploadWaitSeconds: defaultUploadWaitSeconds,
			Temperature:       defaultTemperature,
			MaxOutputTokens:   defaultMaxOutputTokens,
		},
		Recognition: Recognition{
			InlineMaxMB:      defaultInlineMaxMB,
			MaxRetries:       defaultMaxRetries,
			RetryBaseSeconds: defaultRetryBaseSeconds,
			SegmentMinutes:   defaultSegmentMinutes,
			ResultColumn:     defaultResultColumn,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
