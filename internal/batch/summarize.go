package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"scribe/internal/fileutil"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/prompts"
	"scribe/internal/services"
	"scribe/internal/textutil"
)

// TextGenerator abstracts plain text generation for the summary stage.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Summarizer runs the summary stage over recognized text documents:
// one summary file per input text file.
type Summarizer struct {
	generator TextGenerator
	catalog   *prompts.Catalog
	logger    *slog.Logger
	store     *ledger.Store
}

// SummarizerOption customizes the summarizer.
type SummarizerOption func(*Summarizer)

// WithSummaryLogger attaches a logger for summary progress.
func WithSummaryLogger(logger *slog.Logger) SummarizerOption {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSummaryLedger records summary runs to the given store.
func WithSummaryLedger(store *ledger.Store) SummarizerOption {
	return func(s *Summarizer) {
		s.store = store
	}
}

// NewSummarizer constructs a summarizer around the supplied generator.
func NewSummarizer(generator TextGenerator, catalog *prompts.Catalog, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		generator: generator,
		catalog:   catalog,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SummarizeDirectory summarizes every text file under inputDir into
// outputDir. Empty inputs are skipped, failures are isolated per file.
func (s *Summarizer) SummarizeDirectory(ctx context.Context, inputDir, outputDir string) (Stats, error) {
	var stats Stats

	// A broken summary template must abort before any file is touched.
	if _, err := s.catalog.SummaryPrompt("probe"); err != nil {
		return stats, err
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return stats, services.Wrap(services.ErrNotFound, "batch", "summarize",
			fmt.Sprintf("input directory %s", inputDir), err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "batch", "summarize", "create output directory", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		if strings.HasSuffix(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())), "_summary") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	runID := s.beginRun(ctx)
	for _, name := range names {
		if ctx.Err() != nil {
			s.finishRun(ctx, runID, stats)
			return stats, ctx.Err()
		}
		outcome, detail := s.summarizeFile(ctx, filepath.Join(inputDir, name), outputDir)
		stats.record(outcome)
		s.recordItem(ctx, runID, name, outcome, detail)
	}
	s.finishRun(ctx, runID, stats)

	s.logger.Info("summary pass finished",
		logging.Int("total", stats.Total),
		logging.Int("processed", stats.Processed),
		logging.Int("skipped_empty", stats.SkippedEmpty),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

func (s *Summarizer) summarizeFile(ctx context.Context, path, outputDir string) (ItemOutcome, string) {
	name := filepath.Base(path)
	ctx = services.WithRequestID(services.WithSource(ctx, name), uuid.NewString())
	log := logging.WithContext(ctx, s.logger)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("read source failed", logging.Error(err))
		return OutcomeFailed, err.Error()
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		log.Info("skipping empty document")
		return OutcomeSkippedNoInput, ""
	}

	prompt, err := s.catalog.SummaryPrompt(text)
	if err != nil {
		return OutcomeFailed, err.Error()
	}
	summary, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		log.Error("summary generation failed", logging.Error(err))
		return OutcomeFailed, err.Error()
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	outPath := filepath.Join(outputDir, stem+"_summary.txt")
	if err := fileutil.WriteTextFileAtomic(outPath, []byte(textutil.CleanRecognizedText(summary)+"\n")); err != nil {
		return OutcomeFailed, err.Error()
	}
	return OutcomeProcessed, ""
}

func (s *Summarizer) beginRun(ctx context.Context) string {
	if s.store == nil {
		return ""
	}
	runID, err := s.store.BeginRun(ctx, string(prompts.TaskSummarize))
	if err != nil {
		s.logger.Warn("ledger begin failed", logging.Error(err))
		return ""
	}
	return runID
}

func (s *Summarizer) recordItem(ctx context.Context, runID, sourceID string, outcome ItemOutcome, detail string) {
	if s.store == nil || runID == "" {
		return
	}
	err := s.store.RecordItem(ctx, runID, ledger.Item{
		SourceID: sourceID,
		Outcome:  string(outcome),
		Detail:   detail,
	})
	if err != nil {
		s.logger.Warn("ledger record failed", logging.Error(err))
	}
}

func (s *Summarizer) finishRun(ctx context.Context, runID string, stats Stats) {
	if s.store == nil || runID == "" {
		return
	}
	err := s.store.FinishRun(ctx, runID, ledger.Totals{
		Total:          stats.Total,
		Processed:      stats.Processed,
		SkippedEmpty:   stats.SkippedEmpty,
		SkippedMissing: stats.SkippedMissing,
		Failed:         stats.Failed,
	})
	if err != nil {
		s.logger.Warn("ledger finish failed", logging.Error(err))
	}
}
