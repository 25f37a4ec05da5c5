package memory

import (
	"fmt"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
)

// TransactionLedger is an in-memory implementation of ports.TransactionLedger.
// A run is single-threaded and owns its ledger, so there is no locking.
type TransactionLedger struct {
	entries map[domain.TxID]*domain.LedgerEntry
}

// NewTransactionLedger creates an empty ledger.
func NewTransactionLedger() *TransactionLedger {
	return &TransactionLedger{
		entries: make(map[domain.TxID]*domain.LedgerEntry),
	}
}

// Record inserts a new entry, refusing a TxID that is already recorded.
func (l *TransactionLedger) Record(entry domain.LedgerEntry) error {
	if _, exists := l.entries[entry.Tx]; exists {
		return fmt.Errorf("record tx %d: %w", entry.Tx, domain.ErrDuplicateTransaction)
	}
	l.entries[entry.Tx] = &entry
	return nil
}

// Lookup returns a copy of the entry so callers cannot mutate it in place.
func (l *TransactionLedger) Lookup(tx domain.TxID) (domain.LedgerEntry, bool) {
	e, ok := l.entries[tx]
	if !ok {
		return domain.LedgerEntry{}, false
	}
	return *e, true
}

// MarkDisputed flags the entry as disputed. Unknown TxIDs are ignored.
func (l *TransactionLedger) MarkDisputed(tx domain.TxID) {
	if e, ok := l.entries[tx]; ok {
		e.Disputed = true
	}
}

// ClearDisputed clears the dispute flag. Unknown TxIDs are ignored.
func (l *TransactionLedger) ClearDisputed(tx domain.TxID) {
	if e, ok := l.entries[tx]; ok {
		e.Disputed = false
	}
}

// Len returns the number of recorded entries.
func (l *TransactionLedger) Len() int {
	return len(l.entries)
}

// Compile-time check: ensure TransactionLedger implements ports.TransactionLedger
var _ ports.TransactionLedger = (*TransactionLedger)(nil)
