package prompts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scribe/internal/services"
)

func TestInstructionStripsHeader(t *testing.T) {
	c := NewCatalog("")
	got, err := c.Instruction(TaskOCR, "")
	if err != nil {
		t.Fatalf("Instruction: %v", err)
	}
	if strings.HasPrefix(got, "#") {
		t.Fatalf("header not stripped: %q", got[:40])
	}
	if !strings.Contains(got, "Transcribe ALL visible text") {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestInstructionLanguageSelection(t *testing.T) {
	c := NewCatalog("")
	cases := []struct {
		language string
		want     string
	}{
		{"", "French handwriting"},
		{"french", "French handwriting"},
		{"arabic", "Arabic handwriting"},
		{"multilingual", "any language or script"},
	}
	for _, tc := range cases {
		got, err := c.Instruction(TaskHTR, tc.language)
		if err != nil {
			t.Fatalf("Instruction(%q): %v", tc.language, err)
		}
		if !strings.Contains(got, tc.want) {
			t.Errorf("Instruction(%q) missing %q", tc.language, tc.want)
		}
	}
}

func TestInstructionUnknownLanguage(t *testing.T) {
	c := NewCatalog("")
	_, err := c.Instruction(TaskHTR, "klingon")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestInstructionOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	body := "# Custom\n\nOverride instruction body.\n"
	if err := os.WriteFile(filepath.Join(dir, "ocr_system_prompt.md"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewCatalog(dir)
	got, err := c.Instruction(TaskOCR, "")
	if err != nil {
		t.Fatalf("Instruction: %v", err)
	}
	if got != "Override instruction body.\n" {
		t.Fatalf("override not used: %q", got)
	}

	// Tasks without an override file still resolve from the embedded set.
	if _, err := c.Instruction(TaskTranscribe, ""); err != nil {
		t.Fatalf("embedded fallback: %v", err)
	}
}

func TestInstructionEmptyOverrideFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ocr_system_prompt.md"), []byte("   \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewCatalog(dir).Instruction(TaskOCR, "")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("want configuration error, got %v", err)
	}
}

func TestSummaryPromptSubstitution(t *testing.T) {
	c := NewCatalog("")
	got, err := c.SummaryPrompt("Body of the document.")
	if err != nil {
		t.Fatalf("SummaryPrompt: %v", err)
	}
	if strings.Contains(got, "{text}") {
		t.Fatal("placeholder left in prompt")
	}
	if !strings.Contains(got, "Body of the document.") {
		t.Fatal("document text missing from prompt")
	}
}

func TestAlternativesCount(t *testing.T) {
	alts := Alternatives(TaskHTR, "arabic")
	if len(alts) != 3 {
		t.Fatalf("want 3 alternatives, got %d", len(alts))
	}
	for i, alt := range alts {
		if !strings.Contains(alt, "Arabic handwritten") {
			t.Errorf("alternative %d missing language description: %q", i, alt)
		}
	}
}

func TestRequestPerTask(t *testing.T) {
	if got := Request(TaskOCR, ""); !strings.Contains(got, "extract all text") {
		t.Errorf("ocr request: %q", got)
	}
	if got := Request(TaskTranscribe, ""); !strings.Contains(got, "audio") {
		t.Errorf("transcribe request: %q", got)
	}
	if got := Request(TaskHTR, "french"); !strings.Contains(got, "French handwritten") {
		t.Errorf("htr request: %q", got)
	}
}
