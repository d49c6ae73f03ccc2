package extract

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"scribe/internal/assemble"
	"scribe/internal/services"
)

func TestPDFCountMissingFile(t *testing.T) {
	e := NewPDF()
	_, err := e.Count(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("want extraction error, got %v", err)
	}
}

func TestPDFKind(t *testing.T) {
	if NewPDF().Kind() != assemble.KindPage {
		t.Fatal("pdf extractor must produce pages")
	}
}

func TestIsPDF(t *testing.T) {
	if !IsPDF("scan.pdf") || !IsPDF("SCAN.PDF") {
		t.Fatal("expected pdf detection")
	}
	if IsPDF("scan.mp3") {
		t.Fatal("unexpected pdf classification")
	}
}
