package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"scribe/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))
	logger.Info("unit recognized", String("tier", "inline"), Int("unit", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("expected level in output, got %q", line)
	}
	if !strings.Contains(line, "unit recognized") {
		t.Fatalf("expected message in output, got %q", line)
	}
	if !strings.Contains(line, "tier=inline") || !strings.Contains(line, "unit=3") {
		t.Fatalf("expected attrs in output, got %q", line)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := services.WithSource(context.Background(), "letters.pdf")
	ctx = services.WithUnit(ctx, 4)
	ctx = services.WithRequestID(ctx, "abc-123")

	WithContext(ctx, base).Info("probe")
	out := buf.String()
	for _, want := range []string{`"source":"letters.pdf"`, `"unit":4`, `"correlation_id":"abc-123"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output, got %s", want, out)
		}
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("should not panic")
}
