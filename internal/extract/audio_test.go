package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"scribe/internal/services"
)

func setHelperCommand(t *testing.T, mode string, captured *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append(*captured, append([]string{name}, args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			fmt.Sprintf("SCRIBE_HELPER_MODE=%s", mode),
			fmt.Sprintf("SCRIBE_HELPER_DEST=%s", lastArg(args)),
		)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func lastArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[len(args)-1]
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("SCRIBE_HELPER_MODE") {
	case "probe":
		fmt.Println("1250.400000")
		os.Exit(0)
	case "segment":
		// First call is the ffprobe duration check, later calls are
		// ffmpeg segment writes identified by a destination path.
		dest := os.Getenv("SCRIBE_HELPER_DEST")
		if dest != "" && dest != "-" && fileLooksLikeSegment(dest) {
			os.WriteFile(dest, []byte("segment-bytes"), 0o644)
			os.Exit(0)
		}
		fmt.Println("1250.400000")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "boom")
		os.Exit(1)
	default:
		os.Exit(0)
	}
}

func fileLooksLikeSegment(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "segment_")
}

func TestAudioCountCeilsSegments(t *testing.T) {
	var captured [][]string
	setHelperCommand(t, "probe", &captured)

	e := NewAudio("ffmpeg", "ffprobe", 10*time.Minute)
	count, err := e.Count(context.Background(), "/audio/lecture.mp3")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	// 1250.4s over 600s segments rounds up to 3.
	if count != 3 {
		t.Fatalf("count = %d", count)
	}
	if len(captured) != 1 || captured[0][0] != "ffprobe" {
		t.Fatalf("captured = %v", captured)
	}
}

func TestAudioExtractSegment(t *testing.T) {
	var captured [][]string
	setHelperCommand(t, "segment", &captured)

	e := NewAudio("ffmpeg", "ffprobe", 10*time.Minute)
	unit, err := e.Extract(context.Background(), "/audio/lecture.mp3", 2)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if unit.Index != 2 || unit.MIME != "audio/mpeg" {
		t.Fatalf("unit = %+v", unit)
	}
	if string(unit.Data) != "segment-bytes" {
		t.Fatalf("data = %q", unit.Data)
	}

	// Second captured call is the ffmpeg invocation; segment 2 starts
	// at 600 seconds.
	if len(captured) != 2 {
		t.Fatalf("calls = %d", len(captured))
	}
	ffmpegArgs := captured[1]
	if ffmpegArgs[0] != "ffmpeg" {
		t.Fatalf("binary = %q", ffmpegArgs[0])
	}
	if idx := indexOf(ffmpegArgs, "-ss"); idx < 0 || ffmpegArgs[idx+1] != "600.000" {
		t.Fatalf("start offset args = %v", ffmpegArgs)
	}
	if idx := indexOf(ffmpegArgs, "-t"); idx < 0 || ffmpegArgs[idx+1] != "600.000" {
		t.Fatalf("duration args = %v", ffmpegArgs)
	}
}

func TestAudioExtractIndexOutOfRange(t *testing.T) {
	setHelperCommand(t, "probe", nil)

	e := NewAudio("ffmpeg", "ffprobe", 10*time.Minute)
	_, err := e.Extract(context.Background(), "/audio/lecture.mp3", 9)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestAudioProbeFailure(t *testing.T) {
	setHelperCommand(t, "failure", nil)

	e := NewAudio("ffmpeg", "ffprobe", 10*time.Minute)
	_, err := e.Count(context.Background(), "/audio/lecture.mp3")
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("want extraction error, got %v", err)
	}
}

func TestIsAudio(t *testing.T) {
	if !IsAudio("talk.MP3") || !IsAudio("x.flac") {
		t.Fatal("expected supported audio extensions")
	}
	if IsAudio("doc.pdf") || IsAudio("notes.txt") {
		t.Fatal("unexpected audio classification")
	}
}

func indexOf(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}
