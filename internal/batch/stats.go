package batch

// ItemOutcome classifies what happened to one batch source.
type ItemOutcome string

const (
	OutcomeProcessed           ItemOutcome = "processed"
	OutcomeSkippedNoInput      ItemOutcome = "skipped_no_input"
	OutcomeSkippedMissingInput ItemOutcome = "skipped_missing_input"
	OutcomeFailed              ItemOutcome = "failed"
)

// Stats holds the running counters for one batch pass. Counters only
// grow; the struct is never shared across passes.
type Stats struct {
	Total          int
	Processed      int
	SkippedEmpty   int
	SkippedMissing int
	Failed         int
}

func (s *Stats) record(outcome ItemOutcome) {
	s.Total++
	switch outcome {
	case OutcomeProcessed:
		s.Processed++
	case OutcomeSkippedNoInput:
		s.SkippedEmpty++
	case OutcomeSkippedMissingInput:
		s.SkippedMissing++
	case OutcomeFailed:
		s.Failed++
	}
}

// SuccessRate returns processed items over total items, zero for an
// empty pass.
func (s Stats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.Total)
}
