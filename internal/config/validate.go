package config

import (
	"errors"
	"fmt"
)

var knownLanguages = map[string]bool{
	"":             true,
	"french":       true,
	"arabic":       true,
	"multilingual": true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateRecognition(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("gemini.api_key is required. Set GEMINI_API_KEY env var or edit %s (create with 'scribe config init')", defaultPath)
	}
	if err := ensurePositiveMap(map[string]int{
		"gemini.timeout_seconds":     c.Gemini.TimeoutSeconds,
		"gemini.upload_poll_seconds": c.Gemini.UploadPollSeconds,
		"gemini.upload_wait_seconds": c.Gemini.UploadWaitSeconds,
		"gemini.max_output_tokens":   c.Gemini.MaxOutputTokens,
	}); err != nil {
		return err
	}
	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		return errors.New("gemini.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateRecognition() error {
	if c.Recognition.InlineMaxMB <= 0 {
		return errors.New("recognition.inline_max_mb must be positive")
	}
	if c.Recognition.MaxRetries < 0 {
		return errors.New("recognition.max_retries must not be negative")
	}
	if c.Recognition.RetryBaseSeconds <= 0 {
		return errors.New("recognition.retry_base_seconds must be positive")
	}
	if c.Recognition.SegmentMinutes <= 0 {
		return errors.New("recognition.segment_minutes must be positive")
	}
	if !knownLanguages[c.Recognition.Language] {
		return fmt.Errorf("recognition.language: unsupported value %q (use french, arabic, or multilingual)", c.Recognition.Language)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
