package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scribe/internal/services"
)

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one batch pass over a set of sources.
type Run struct {
	ID             string
	Task           string
	StartedAt      time.Time
	FinishedAt     time.Time
	Total          int
	Processed      int
	SkippedEmpty   int
	SkippedMissing int
	Failed         int
}

// Item records the terminal outcome for one source within a run.
type Item struct {
	SourceID        string
	Outcome         string
	Detail          string
	TotalUnits      int
	SuccessfulUnits int
}

// Totals carries the final counters written when a run finishes.
type Totals struct {
	Total          int
	Processed      int
	SkippedEmpty   int
	SkippedMissing int
	Failed         int
}

// Open initializes or connects to the ledger database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun opens a new run record and returns its identifier.
func (s *Store) BeginRun(ctx context.Context, task string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, task, started_at) VALUES (?, ?, ?)",
		id, task, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// RecordItem appends one source outcome to a run.
func (s *Store) RecordItem(ctx context.Context, runID string, item Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_items (run_id, source_id, outcome, detail, total_units, successful_units, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, item.SourceID, item.Outcome, item.Detail,
		item.TotalUnits, item.SuccessfulUnits,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record item: %w", err)
	}
	return nil
}

// FinishRun stamps the run finished and writes the final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, totals Totals) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, processed = ?, skipped_empty = ?, skipped_missing = ?, failed = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339),
		totals.Total, totals.Processed, totals.SkippedEmpty, totals.SkippedMissing, totals.Failed,
		runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "ledger", "finish", fmt.Sprintf("run %s", runID), nil)
	}
	return nil
}

// GetRun fetches a single run by identifier.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, task, started_at, COALESCE(finished_at, ''), total, processed, skipped_empty, skipped_missing, failed
		 FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, services.Wrap(services.ErrNotFound, "ledger", "get", fmt.Sprintf("run %s", runID), nil)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns lists the most recently started runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task, started_at, COALESCE(finished_at, ''), total, processed, skipped_empty, skipped_missing, failed
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// RunItems lists the recorded source outcomes of a run in insertion
// order.
func (s *Store) RunItems(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source_id, outcome, detail, total_units, successful_units
		 FROM run_items WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.SourceID, &item.Outcome, &item.Detail, &item.TotalUnits, &item.SuccessfulUnits); err != nil {
			return nil, fmt.Errorf("scan run item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list run items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var started, finished string
	if err := row.Scan(&run.ID, &run.Task, &started, &finished,
		&run.Total, &run.Processed, &run.SkippedEmpty, &run.SkippedMissing, &run.Failed); err != nil {
		return Run{}, err
	}
	run.StartedAt, _ = time.Parse(time.RFC3339, started)
	if finished != "" {
		run.FinishedAt, _ = time.Parse(time.RFC3339, finished)
	}
	return run, nil
}
