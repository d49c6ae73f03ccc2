package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGemini()
	c.normalizeRecognition()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.pdf_dir", &c.Paths.PDFDir},
		{"paths.audio_dir", &c.Paths.AudioDir},
		{"paths.text_dir", &c.Paths.TextDir},
		{"paths.pdf_output_dir", &c.Paths.PDFOutputDir},
		{"paths.audio_output_dir", &c.Paths.AudioOutputDir},
		{"paths.text_output_dir", &c.Paths.TextOutputDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"paths.prompts_dir", &c.Paths.PromptsDir},
		{"paths.ledger_path", &c.Paths.LedgerPath},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			continue
		}
		if *field.value, err = ExpandPath(*field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

func (c *Config) normalizeGemini() {
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
	if c.Gemini.UploadPollSeconds <= 0 {
		c.Gemini.UploadPollSeconds = defaultUploadPollSeconds
	}
	if c.Gemini.UploadWaitSeconds <= 0 {
		c.Gemini.UploadWaitSeconds = defaultUploadWaitSeconds
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		c.Gemini.MaxOutputTokens = defaultMaxOutputTokens
	}
}

func (c *Config) normalizeRecognition() {
	c.Recognition.Language = strings.ToLower(strings.TrimSpace(c.Recognition.Language))
	c.Recognition.ResultColumn = strings.TrimSpace(c.Recognition.ResultColumn)
	if c.Recognition.ResultColumn == "" {
		c.Recognition.ResultColumn = defaultResultColumn
	}
	if c.Recognition.SegmentMinutes <= 0 {
		c.Recognition.SegmentMinutes = defaultSegmentMinutes
	}
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
