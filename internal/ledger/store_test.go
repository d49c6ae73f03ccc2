package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"scribe/internal/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID, err := store.BeginRun(ctx, "ocr")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	items := []Item{
		{SourceID: "a.pdf", Outcome: "processed", TotalUnits: 3, SuccessfulUnits: 3},
		{SourceID: "b.pdf", Outcome: "failed", Detail: "extraction error"},
		{SourceID: "", Outcome: "skipped_no_input"},
	}
	for _, item := range items {
		if err := store.RecordItem(ctx, runID, item); err != nil {
			t.Fatalf("RecordItem: %v", err)
		}
	}

	totals := Totals{Total: 3, Processed: 1, SkippedEmpty: 1, Failed: 1}
	if err := store.FinishRun(ctx, runID, totals); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Task != "ocr" || run.Total != 3 || run.Processed != 1 || run.Failed != 1 {
		t.Fatalf("run = %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Fatal("finished_at not recorded")
	}

	got, err := store.RunItems(ctx, runID)
	if err != nil {
		t.Fatalf("RunItems: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("items = %d", len(got))
	}
	if got[0].SourceID != "a.pdf" || got[1].Detail != "extraction error" {
		t.Fatalf("items = %+v", got)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	err := store.FinishRun(context.Background(), "no-such-run", Totals{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.BeginRun(ctx, "ocr")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	second, err := store.BeginRun(ctx, "transcribe")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d", len(runs))
	}
	ids := []string{runs[0].ID, runs[1].ID}
	if !(ids[0] == first || ids[0] == second) || ids[0] == ids[1] {
		t.Fatalf("ids = %v", ids)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	runID, err := store.BeginRun(context.Background(), "ocr")
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetRun(context.Background(), runID); err != nil {
		t.Fatalf("GetRun after reopen: %v", err)
	}
}
