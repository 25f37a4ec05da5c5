package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunInfo identifies one execution of the engine over one input.
type RunInfo struct {
	ID        uuid.UUID
	Source    string
	StartedAt time.Time
}

// NewRunInfo starts a run over source.
func NewRunInfo(source string) RunInfo {
	return RunInfo{
		ID:        uuid.New(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
}

// RunSummary counts what happened during a run.
type RunSummary struct {
	Applied       int
	Rejected      map[RejectReason]int
	Accounts      int
	LedgerEntries int
}

// TotalRejected returns the number of rejected records across all reasons.
func (s RunSummary) TotalRejected() int {
	total := 0
	for _, n := range s.Rejected {
		total += n
	}
	return total
}
