package recognize

import "fmt"

// Unit is one independently recognizable piece of a source document:
// a single page re-encoded as a standalone file, or one time-bounded
// audio slice.
type Unit struct {
	Index int // 1-based, ordering is significant
	Data  []byte
	MIME  string
}

// Status is the terminal state of a unit.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Tier names which escalation level produced a successful result.
const (
	TierInline = "inline"
	TierStaged = "staged"
)

// AlternativeTier labels a success produced by the k-th reframed
// request (1-based).
func AlternativeTier(k int) string {
	return fmt.Sprintf("alternative#%d", k)
}

// Outcome is the terminal result for one unit.
type Outcome struct {
	UnitIndex int
	Status    Status
	Text      string
	Tier      string
	ErrorKind string
	Detail    string
}

// Succeeded reports whether the unit produced usable text.
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}
