package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"scribe/internal/assemble"
	"scribe/internal/extract"
	"scribe/internal/fileutil"
	"scribe/internal/ledger"
	"scribe/internal/logging"
	"scribe/internal/prompts"
	"scribe/internal/recognize"
	"scribe/internal/services"
	"scribe/internal/textutil"
)

// Recognizer abstracts the per-unit escalation strategy.
type Recognizer interface {
	Recognize(ctx context.Context, unit recognize.Unit, params recognize.Params) recognize.Outcome
}

// Orchestrator drives one task (OCR, handwriting, transcription) over
// single documents, directories, or spreadsheet-controlled batches.
// Item failures are isolated: one bad source never aborts the pass.
type Orchestrator struct {
	recognizer   Recognizer
	extractor    extract.Extractor
	catalog      *prompts.Catalog
	task         prompts.Task
	language     string
	logger       *slog.Logger
	store        *ledger.Store
	resultColumn string
	defaultExt   string
	now          func() time.Time
}

// Option customizes the orchestrator.
type Option func(*Orchestrator)

// WithLogger attaches a logger for batch progress.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLedger records run history to the given store.
func WithLedger(store *ledger.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithResultColumn overrides the spreadsheet column receiving results.
func WithResultColumn(name string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(name) != "" {
			o.resultColumn = strings.TrimSpace(name)
		}
	}
}

// WithClock overrides the time source used in output headers (useful
// for tests).
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New constructs an orchestrator for one task.
func New(recognizer Recognizer, extractor extract.Extractor, catalog *prompts.Catalog, task prompts.Task, language string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		recognizer:   recognizer,
		extractor:    extractor,
		catalog:      catalog,
		task:         task,
		language:     language,
		logger:       logging.NewNop(),
		resultColumn: "OCR",
		defaultExt:   ".pdf",
		now:          time.Now,
	}
	if task == prompts.TaskTranscribe {
		o.defaultExt = ".mp3"
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// params resolves the instruction material once per pass. A missing or
// unreadable template aborts before any processing starts.
func (o *Orchestrator) params() (recognize.Params, error) {
	instruction, err := o.catalog.Instruction(o.task, o.language)
	if err != nil {
		return recognize.Params{}, err
	}
	return recognize.Params{
		Instruction:  instruction,
		Primary:      prompts.Request(o.task, o.language),
		Alternatives: prompts.Alternatives(o.task, o.language),
	}, nil
}

// ProcessDocument splits one source into units, recognizes each in
// order, and reassembles the outcomes. Unit failures end up as
// placeholders in the document, not errors.
func (o *Orchestrator) ProcessDocument(ctx context.Context, path string) (assemble.Document, error) {
	var empty assemble.Document
	params, err := o.params()
	if err != nil {
		return empty, err
	}

	ctx = services.WithSource(ctx, filepath.Base(path))
	if _, ok := services.RequestIDFromContext(ctx); !ok {
		ctx = services.WithRequestID(ctx, uuid.NewString())
	}

	count, err := o.extractor.Count(ctx, path)
	if err != nil {
		return empty, err
	}

	stem := textutil.SanitizeFileStem(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	log := logging.WithContext(ctx, o.logger)
	log.Info("processing document", logging.Int("units", count))

	outcomes := make([]recognize.Outcome, 0, count)
	for index := 1; index <= count; index++ {
		if ctx.Err() != nil {
			return empty, ctx.Err()
		}
		unitCtx := services.WithUnit(ctx, index)
		unit, err := o.extractor.Extract(unitCtx, path, index)
		if err != nil {
			log.Warn("unit extraction failed",
				logging.Int(logging.FieldUnit, index),
				logging.Error(err))
			outcomes = append(outcomes, recognize.Outcome{
				UnitIndex: index,
				Status:    recognize.StatusFailed,
				ErrorKind: services.Kind(err),
				Detail:    err.Error(),
			})
			continue
		}
		unitParams := params
		unitParams.DisplayName = recognize.DisplayName(stem, index)
		outcomes = append(outcomes, o.recognizer.Recognize(unitCtx, unit, unitParams))
	}

	doc := assemble.Assemble(o.extractor.Kind(), outcomes)
	log.Info("document assembled",
		logging.Int("units", doc.TotalUnits),
		logging.Int("successful", doc.SuccessfulUnits))
	return doc, nil
}

// ProcessDirectory runs every matching source under inputDir and
// writes one text file per source into outputDir.
func (o *Orchestrator) ProcessDirectory(ctx context.Context, inputDir, outputDir string) (Stats, error) {
	var stats Stats
	if _, err := o.params(); err != nil {
		return stats, err
	}

	sources, err := o.listSources(inputDir)
	if err != nil {
		return stats, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "batch", "directory", "create output directory", err)
	}

	runID := o.beginRun(ctx)
	for _, source := range sources {
		if ctx.Err() != nil {
			o.finishRun(ctx, runID, stats)
			return stats, ctx.Err()
		}
		outcome, detail, doc := o.processItem(ctx, source, outputDir)
		stats.record(outcome)
		o.recordItem(ctx, runID, filepath.Base(source), outcome, detail, doc)
	}
	o.finishRun(ctx, runID, stats)

	o.logger.Info("directory pass finished",
		logging.Int("total", stats.Total),
		logging.Int("processed", stats.Processed),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

// processItem wraps the whole per-source pipeline so any failure
// becomes a recorded outcome instead of an abort. Each item gets its
// own request id so log lines from one source correlate.
func (o *Orchestrator) processItem(ctx context.Context, source, outputDir string) (ItemOutcome, string, assemble.Document) {
	ctx = services.WithRequestID(ctx, uuid.NewString())
	doc, err := o.ProcessDocument(ctx, source)
	if err != nil {
		o.logger.Error("source failed",
			logging.String(logging.FieldSource, filepath.Base(source)),
			logging.Error(err))
		return OutcomeFailed, err.Error(), assemble.Document{}
	}

	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	outPath := filepath.Join(outputDir, stem+".txt")
	if err := fileutil.WriteTextFileAtomic(outPath, []byte(o.RenderOutput(filepath.Base(source), doc))); err != nil {
		o.logger.Error("write output failed",
			logging.String(logging.FieldSource, filepath.Base(source)),
			logging.Error(err))
		return OutcomeFailed, err.Error(), doc
	}
	return OutcomeProcessed, "", doc
}

// RenderOutput prepends a provenance header to transcriptions; page
// recognition output stays bare. Single-file and directory runs share
// this renderer.
func (o *Orchestrator) RenderOutput(sourceName string, doc assemble.Document) string {
	if o.task != prompts.TaskTranscribe {
		return doc.Text
	}
	header := fmt.Sprintf("Transcription of %s\nGenerated: %s\nSegments: %d (%d recognized)\n\n",
		sourceName,
		o.now().Format("2006-01-02 15:04"),
		doc.TotalUnits,
		doc.SuccessfulUnits)
	return header + doc.Text
}

func (o *Orchestrator) listSources(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "batch", "directory",
			fmt.Sprintf("input directory %s", inputDir), err)
	}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || !o.accepts(entry.Name()) {
			continue
		}
		sources = append(sources, filepath.Join(inputDir, entry.Name()))
	}
	sort.Strings(sources)
	return sources, nil
}

func (o *Orchestrator) accepts(name string) bool {
	if o.task == prompts.TaskTranscribe {
		return extract.IsAudio(name)
	}
	return extract.IsPDF(name)
}

func (o *Orchestrator) beginRun(ctx context.Context) string {
	if o.store == nil {
		return ""
	}
	runID, err := o.store.BeginRun(ctx, string(o.task))
	if err != nil {
		o.logger.Warn("ledger begin failed", logging.Error(err))
		return ""
	}
	return runID
}

func (o *Orchestrator) recordItem(ctx context.Context, runID, sourceID string, outcome ItemOutcome, detail string, doc assemble.Document) {
	if o.store == nil || runID == "" {
		return
	}
	err := o.store.RecordItem(ctx, runID, ledger.Item{
		SourceID:        sourceID,
		Outcome:         string(outcome),
		Detail:          detail,
		TotalUnits:      doc.TotalUnits,
		SuccessfulUnits: doc.SuccessfulUnits,
	})
	if err != nil {
		o.logger.Warn("ledger record failed", logging.Error(err))
	}
}

func (o *Orchestrator) finishRun(ctx context.Context, runID string, stats Stats) {
	if o.store == nil || runID == "" {
		return
	}
	err := o.store.FinishRun(ctx, runID, ledger.Totals{
		Total:          stats.Total,
		Processed:      stats.Processed,
		SkippedEmpty:   stats.SkippedEmpty,
		SkippedMissing: stats.SkippedMissing,
		Failed:         stats.Failed,
	})
	if err != nil {
		o.logger.Warn("ledger finish failed", logging.Error(err))
	}
}
