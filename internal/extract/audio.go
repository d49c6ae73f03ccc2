package extract

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scribe/internal/assemble"
	"scribe/internal/recognize"
	"scribe/internal/services"
)

var commandContext = exec.CommandContext

var audioMIMETypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wma":  "audio/x-ms-wma",
}

// AudioExtractor slices a recording into fixed-length segments using
// ffmpeg. Segments keep the source codec; only the final segment may be
// shorter than the configured length.
type AudioExtractor struct {
	ffmpeg        string
	ffprobe       string
	segmentLength time.Duration
}

// NewAudio returns a segment-per-unit extractor driving the given
// ffmpeg and ffprobe binaries.
func NewAudio(ffmpegBinary, ffprobeBinary string, segmentLength time.Duration) *AudioExtractor {
	if segmentLength <= 0 {
		segmentLength = 10 * time.Minute
	}
	return &AudioExtractor{
		ffmpeg:        ffmpegBinary,
		ffprobe:       ffprobeBinary,
		segmentLength: segmentLength,
	}
}

func (*AudioExtractor) Kind() assemble.Kind {
	return assemble.KindSegment
}

func (e *AudioExtractor) Count(ctx context.Context, path string) (int, error) {
	duration, err := e.probeDuration(ctx, path)
	if err != nil {
		return 0, err
	}
	count := int(math.Ceil(duration.Seconds() / e.segmentLength.Seconds()))
	if count < 1 {
		count = 1
	}
	return count, nil
}

func (e *AudioExtractor) Extract(ctx context.Context, path string, index int) (recognize.Unit, error) {
	var empty recognize.Unit
	count, err := e.Count(ctx, path)
	if err != nil {
		return empty, err
	}
	if err := checkIndex(index, count); err != nil {
		return empty, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := audioMIMETypes[ext]
	if !ok {
		return empty, services.Wrap(services.ErrExtraction, "extract", "audio",
			fmt.Sprintf("unsupported audio extension %q", ext), nil)
	}

	dest, err := os.CreateTemp("", "segment_*"+ext)
	if err != nil {
		return empty, services.Wrap(services.ErrExtraction, "extract", "audio", "create temp segment", err)
	}
	destPath := dest.Name()
	dest.Close()
	defer os.Remove(destPath)

	start := time.Duration(index-1) * e.segmentLength
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(start),
		"-t", formatSeconds(e.segmentLength),
		"-i", path,
		"-vn",
		"-c:a", "copy",
		destPath,
	}
	cmd := commandContext(ctx, e.ffmpeg, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return empty, services.Wrap(services.ErrExtraction, "extract", "audio",
			fmt.Sprintf("ffmpeg segment %d: %s", index, strings.TrimSpace(string(output))), err)
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		return empty, services.Wrap(services.ErrExtraction, "extract", "audio", "read temp segment", err)
	}
	if len(data) == 0 {
		return empty, services.Wrap(services.ErrExtraction, "extract", "audio",
			fmt.Sprintf("segment %d produced no data", index), nil)
	}
	return recognize.Unit{Index: index, Data: data, MIME: mimeType}, nil
}

func (e *AudioExtractor) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	cmd := commandContext(ctx, e.ffprobe, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, services.Wrap(services.ErrExtraction, "extract", "audio",
			fmt.Sprintf("ffprobe duration: %s", strings.TrimSpace(string(output))), err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExtraction, "extract", "audio", "parse ffprobe duration", err)
	}
	if seconds <= 0 {
		return 0, services.Wrap(services.ErrExtraction, "extract", "audio", "source has no duration", nil)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}
