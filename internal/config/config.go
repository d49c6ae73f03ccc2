package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains input, output, and state directory configuration.
type Paths struct {
	PDFDir         string `toml:"pdf_dir"`
	AudioDir       string `toml:"audio_dir"`
	TextDir        string `toml:"text_dir"`
	PDFOutputDir   string `toml:"pdf_output_dir"`
	AudioOutputDir string `toml:"audio_output_dir"`
	TextOutputDir  string `toml:"text_output_dir"`
	LogDir         string `toml:"log_dir"`
	PromptsDir     string `toml:"prompts_dir"`
	LedgerPath     string `toml:"ledger_path"`
}

// Gemini contains connection settings for the recognition service.
type Gemini struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	Model             string  `toml:"model"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	UploadPollSeconds int     `toml:"upload_poll_seconds"`
	UploadWaitSeconds int     `toml:"upload_wait_seconds"`
	Temperature       float64 `toml:"temperature"`
	MaxOutputTokens   int     `toml:"max_output_tokens"`
}

// Recognition contains tuning for the tiered per-unit strategy.
type Recognition struct {
	// InlineMaxMB bounds direct byte submission; larger units go straight to
	// the staged upload path.
	InlineMaxMB int `toml:"inline_max_mb"`
	// MaxRetries bounds backoff retries of the staged path on transient
	// failures.
	MaxRetries       int    `toml:"max_retries"`
	RetryBaseSeconds int    `toml:"retry_base_seconds"`
	Language         string `toml:"language"`
	SegmentMinutes   int    `toml:"segment_minutes"`
	ResultColumn     string `toml:"result_column"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Scribe.
//
// Configuration sections by subsystem:
//   - Paths: input/output directories, prompt templates, ledger location
//   - Gemini: recognition service connection and generation settings
//   - Recognition: tiered strategy tuning (inline threshold, retries, language)
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Gemini      Gemini      `toml:"gemini"`
	Recognition Recognition `toml:"recognition"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/scribe/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
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

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
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

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scribe.toml")
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

// EnsureDirectories creates the directories a batch run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.PDFOutputDir,
		c.Paths.AudioOutputDir,
		c.Paths.TextOutputDir,
		c.Paths.LogDir,
	} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio segmenting.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// ExpandPath resolves ~ prefixes and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
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
