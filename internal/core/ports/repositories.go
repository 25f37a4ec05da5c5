package ports

import (
	"payments-engine/internal/core/domain"
)

// TransactionLedger holds every successful deposit and withdrawal of a run.
// It is a plain state container: callers validate before mutating.
type TransactionLedger interface {
	// Record inserts a new entry. Returns domain.ErrDuplicateTransaction if
	// the TxID is already recorded.
	Record(entry domain.LedgerEntry) error
	// Lookup returns a copy of the entry for tx.
	Lookup(tx domain.TxID) (domain.LedgerEntry, bool)
	MarkDisputed(tx domain.TxID)
	ClearDisputed(tx domain.TxID)
	Len() int
}

// AccountStore maps client ids to account state for the duration of a run.
type AccountStore interface {
	GetOrCreate(client domain.ClientID) *domain.Account
	Get(client domain.ClientID) (*domain.Account, bool)
	// All returns the accounts in the order they were first stored.
	All() []*domain.Account
	Len() int
}
