package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestConfig writes a config file whose paths all live under base and
// returns its location.
func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	body := fmt.Sprintf(`[paths]
pdf_dir = %q
audio_dir = %q
text_dir = %q
pdf_output_dir = %q
audio_output_dir = %q
text_output_dir = %q
log_dir = %q
ledger_path = %q

[gemini]
api_key = "test-key"
`,
		filepath.Join(base, "pdfs"),
		filepath.Join(base, "audio"),
		filepath.Join(base, "text"),
		filepath.Join(base, "pdfs-out"),
		filepath.Join(base, "audio-out"),
		filepath.Join(base, "text-out"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state", "runs.db"),
	)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write test config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
