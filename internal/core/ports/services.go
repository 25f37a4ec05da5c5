package ports

import (
	"context"

	"payments-engine/internal/core/domain"
)

// RecordSource yields parsed input records in input order.
// Next returns io.EOF once the input is exhausted; any other error is fatal.
type RecordSource interface {
	Next() (domain.TransactionRecord, error)
}

// SnapshotSink receives the final account snapshots of a run.
type SnapshotSink interface {
	Publish(ctx context.Context, run domain.RunInfo, snapshots []domain.AccountSnapshot) error
	// Name returns the sink name (e.g., "csv", "redis").
	Name() string
}

// --- Service Ports (Business Logic) ---

// TransactionProcessor applies records to account and ledger state.
type TransactionProcessor interface {
	// Apply applies one record. A rejected record is reported in the outcome,
	// never as an error; errors are fatal.
	Apply(record domain.TransactionRecord) (domain.Outcome, error)
	// Run applies every record of src in order until io.EOF.
	Run(ctx context.Context, src RecordSource) error
	Summary() domain.RunSummary
}

// AuditService counts outcomes and logs rejections.
type AuditService interface {
	Record(record domain.TransactionRecord, outcome domain.Outcome)
	Summary() domain.RunSummary
}

// SnapshotService projects the account store into reported snapshots.
type SnapshotService interface {
	Snapshots() []domain.AccountSnapshot
}
