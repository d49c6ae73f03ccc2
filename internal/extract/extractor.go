package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"scribe/internal/assemble"
	"scribe/internal/recognize"
	"scribe/internal/services"
)

// Extractor splits one source file into an ordered sequence of
// recognizable units. Implementations must be deterministic and leave
// the source untouched.
type Extractor interface {
	// Kind names the unit type for markers and placeholders.
	Kind() assemble.Kind
	// Count returns the number of units in the source.
	Count(ctx context.Context, path string) (int, error)
	// Extract returns the self-contained bytes for one unit. Index is
	// 1-based and must be within [1, Count].
	Extract(ctx context.Context, path string, index int) (recognize.Unit, error)
}

func checkIndex(index, count int) error {
	if index < 1 || index > count {
		return services.Wrap(services.ErrValidation, "extract", "index",
			fmt.Sprintf("unit index %d outside [1, %d]", index, count), nil)
	}
	return nil
}

// IsPDF reports whether the path looks like a PDF source.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// IsAudio reports whether the path carries a supported audio extension.
func IsAudio(path string) bool {
	_, ok := audioMIMETypes[strings.ToLower(filepath.Ext(path))]
	return ok
}
