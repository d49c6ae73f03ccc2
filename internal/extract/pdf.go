package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"scribe/internal/assemble"
	"scribe/internal/recognize"
	"scribe/internal/services"
)

const pdfMIMEType = "application/pdf"

// PDFExtractor treats each page as one unit, re-encoded as a
// standalone single-page document.
type PDFExtractor struct{}

// NewPDF returns a page-per-unit extractor.
func NewPDF() *PDFExtractor {
	return &PDFExtractor{}
}

func (*PDFExtractor) Kind() assemble.Kind {
	return assemble.KindPage
}

func (*PDFExtractor) Count(_ context.Context, path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, services.Wrap(services.ErrExtraction, "extract", "pdf", "open source", err)
	}
	defer file.Close()

	count, err := api.PageCount(file, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrExtraction, "extract", "pdf", "count pages", err)
	}
	if count < 1 {
		return 0, services.Wrap(services.ErrExtraction, "extract", "pdf", "document has no pages", nil)
	}
	return count, nil
}

func (e *PDFExtractor) Extract(ctx context.Context, path string, index int) (recognize.Unit, error) {
	var empty recognize.Unit
	count, err := e.Count(ctx, path)
	if err != nil {
		return empty, err
	}
	if err := checkIndex(index, count); err != nil {
		return empty, err
	}

	file, err := os.Open(path)
	if err != nil {
		return empty, services.Wrap(services.ErrExtraction, "extract", "pdf", "open source", err)
	}
	defer file.Close()

	var page bytes.Buffer
	if err := api.Trim(file, &page, []string{strconv.Itoa(index)}, nil); err != nil {
		return empty, services.Wrap(services.ErrExtraction, "extract", "pdf",
			fmt.Sprintf("extract page %d", index), err)
	}
	return recognize.Unit{Index: index, Data: page.Bytes(), MIME: pdfMIMEType}, nil
}
