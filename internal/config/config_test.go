package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidatesWithKey(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "test-key"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.PDFDir) {
		t.Fatalf("expected normalized absolute pdf dir, got %q", cfg.Paths.PDFDir)
	}
}

func TestValidateRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected missing api key error")
	}
	if !strings.Contains(err.Error(), "gemini.api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Gemini.APIKey != "env-key" {
		t.Fatalf("expected env key to be adopted, got %q", cfg.Gemini.APIKey)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[gemini]
api_key = "file-key"
model = "gemini-2.5-flash"

[recognition]
inline_max_mb = 5
max_retries = 1
language = "arabic"

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be reported as existing")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("expected model override, got %q", cfg.Gemini.Model)
	}
	if cfg.Recognition.InlineMaxMB != 5 || cfg.Recognition.MaxRetries != 1 {
		t.Fatalf("expected recognition overrides, got %+v", cfg.Recognition)
	}
	if cfg.Recognition.Language != "arabic" {
		t.Fatalf("expected language override, got %q", cfg.Recognition.Language)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected logging override, got %q", cfg.Logging.Format)
	}
	// Untouched sections keep defaults.
	if cfg.Recognition.SegmentMinutes != defaultSegmentMinutes {
		t.Fatalf("expected default segment minutes, got %d", cfg.Recognition.SegmentMinutes)
	}
}

func TestLoadRejectsBadLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[gemini]
api_key = "k"

[recognition]
language = "latin"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected unsupported language error")
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory in test environment")
	}
	expanded, err := ExpandPath("~/scribe")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if expanded != filepath.Join(home, "scribe") {
		t.Fatalf("expected home expansion, got %q", expanded)
	}
}
