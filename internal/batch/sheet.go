package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/xuri/excelize/v2"

	"scribe/internal/assemble"
	"scribe/internal/fileutil"
	"scribe/internal/logging"
	"scribe/internal/services"
)

const filenameColumn = "filename"

// ProcessSheet runs every row of a spreadsheet control file. The sheet
// must carry a filename column; recognized text lands in the configured
// result column. Rows are processed independently and the file is
// rewritten once at the end of the pass.
func (o *Orchestrator) ProcessSheet(ctx context.Context, sheetPath, inputDir string) (Stats, error) {
	var stats Stats
	if _, err := o.params(); err != nil {
		return stats, err
	}

	lock := flock.New(sheetPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return stats, services.Wrap(services.ErrConfiguration, "batch", "sheet", "acquire sheet lock", err)
	}
	if !locked {
		return stats, services.Wrap(services.ErrConfiguration, "batch", "sheet",
			fmt.Sprintf("control file %s is in use by another run", sheetPath), nil)
	}
	defer func() { _ = lock.Unlock() }()

	book, err := excelize.OpenFile(sheetPath)
	if err != nil {
		return stats, services.Wrap(services.ErrNotFound, "batch", "sheet",
			fmt.Sprintf("control file %s", sheetPath), err)
	}
	defer book.Close()

	sheet := book.GetSheetName(0)
	rows, err := book.GetRows(sheet)
	if err != nil {
		return stats, services.Wrap(services.ErrValidation, "batch", "sheet", "read rows", err)
	}
	if len(rows) == 0 {
		return stats, services.Wrap(services.ErrValidation, "batch", "sheet", "control file has no header row", nil)
	}

	fileCol, resultCol, err := o.resolveColumns(book, sheet, rows[0])
	if err != nil {
		return stats, err
	}

	runID := o.beginRun(ctx)
	canceled := false
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		if ctx.Err() != nil {
			canceled = true
			break
		}
		outcome, detail, doc, result := o.processRow(ctx, rows[rowIdx], fileCol, inputDir)
		stats.record(outcome)
		o.recordItem(ctx, runID, cellValue(rows[rowIdx], fileCol), outcome, detail, doc)
		if result != "" {
			setCell(book, sheet, resultCol, rowIdx+1, result)
		}
	}

	if err := book.Save(); err != nil {
		o.finishRun(ctx, runID, stats)
		return stats, services.Wrap(services.ErrConfiguration, "batch", "sheet", "rewrite control file", err)
	}
	o.finishRun(ctx, runID, stats)

	if canceled {
		return stats, ctx.Err()
	}
	o.logger.Info("sheet pass finished",
		logging.Int("total", stats.Total),
		logging.Int("processed", stats.Processed),
		logging.Int("skipped_empty", stats.SkippedEmpty),
		logging.Int("skipped_missing", stats.SkippedMissing),
		logging.Int("failed", stats.Failed))
	return stats, nil
}

// resolveColumns locates the filename column and the result column,
// appending the result column to the header when absent. Both indexes
// are 1-based.
func (o *Orchestrator) resolveColumns(book *excelize.File, sheet string, header []string) (int, int, error) {
	fileCol := 0
	resultCol := 0
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if strings.EqualFold(trimmed, filenameColumn) {
			fileCol = i + 1
		}
		if strings.EqualFold(trimmed, o.resultColumn) {
			resultCol = i + 1
		}
	}
	if fileCol == 0 {
		return 0, 0, services.Wrap(services.ErrValidation, "batch", "sheet",
			fmt.Sprintf("control file is missing a %q column", filenameColumn), nil)
	}
	if resultCol == 0 {
		resultCol = len(header) + 1
		setCell(book, sheet, resultCol, 1, o.resultColumn)
	}
	return fileCol, resultCol, nil
}

func (o *Orchestrator) processRow(ctx context.Context, row []string, fileCol int, inputDir string) (ItemOutcome, string, assemble.Document, string) {
	name := strings.TrimSpace(cellValue(row, fileCol))
	if name == "" {
		return OutcomeSkippedNoInput, "", assemble.Document{}, ""
	}

	path, found := o.resolveSource(inputDir, name)
	if !found {
		o.logger.Warn("control row references missing file", logging.String(logging.FieldSource, name))
		return OutcomeSkippedMissingInput, fmt.Sprintf("file %s not found", name), assemble.Document{}, ""
	}

	doc, err := o.ProcessDocument(ctx, path)
	if err != nil {
		return OutcomeFailed, err.Error(), assemble.Document{}, "ERROR: " + err.Error()
	}
	return OutcomeProcessed, "", doc, doc.Text
}

// resolveSource locates a referenced file under inputDir, trying the
// task's default extension when the reference has none.
func (o *Orchestrator) resolveSource(inputDir, name string) (string, bool) {
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(inputDir, name)
	}
	if fileutil.FileExists(path) {
		return path, true
	}
	if filepath.Ext(path) == "" && fileutil.FileExists(path+o.defaultExt) {
		return path + o.defaultExt, true
	}
	return "", false
}

func cellValue(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}

func setCell(book *excelize.File, sheet string, col, row int, value string) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return
	}
	_ = book.SetCellValue(sheet, cell, value)
}
