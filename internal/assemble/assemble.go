package assemble

import (
	"fmt"
	"sort"
	"strings"

	"scribe/internal/recognize"
)

// Kind names the unit type in markers and placeholders.
type Kind string

const (
	KindPage    Kind = "Page"
	KindSegment Kind = "Segment"
)

func (k Kind) lower() string {
	return strings.ToLower(string(k))
}

// Document is the reassembled output for one source file.
type Document struct {
	Text            string
	TotalUnits      int
	SuccessfulUnits int
}

// SuccessRate returns successful units over total units, zero for an
// empty document.
func (d Document) SuccessRate() float64 {
	if d.TotalUnits == 0 {
		return 0
	}
	return float64(d.SuccessfulUnits) / float64(d.TotalUnits)
}

// Assemble concatenates per-unit outcomes into one ordered text. Unit
// 1 carries no marker; every unit with a higher index is preceded by a
// marker line with its number, even when earlier units are absent from
// the input. Failed units occupy their position with a bracketed
// placeholder. Input order does not matter: outcomes are sorted by
// unit index first, so assembly is idempotent.
func Assemble(kind Kind, outcomes []recognize.Outcome) Document {
	sorted := make([]recognize.Outcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].UnitIndex < sorted[j].UnitIndex
	})

	var builder strings.Builder
	successful := 0
	for _, outcome := range sorted {
		if outcome.UnitIndex > 1 {
			builder.WriteString(fmt.Sprintf("\n\n--- %s %d ---\n\n", kind, outcome.UnitIndex))
		}
		if outcome.Succeeded() {
			successful++
			builder.WriteString(outcome.Text)
		} else {
			builder.WriteString(placeholder(kind, outcome))
		}
	}

	return Document{
		Text:            builder.String(),
		TotalUnits:      len(sorted),
		SuccessfulUnits: successful,
	}
}

func placeholder(kind Kind, outcome recognize.Outcome) string {
	detail := outcome.Detail
	if detail == "" {
		detail = "unknown error"
	}
	return fmt.Sprintf("[ERROR: Failed to process %s %d: %s]", kind.lower(), outcome.UnitIndex, detail)
}
