package domain

import (
	"errors"
	"fmt"
)

// ClientID identifies a client account.
type ClientID uint16

// TxID identifies a deposit or withdrawal. Dispute, resolve and chargeback
// records reference the TxID of an earlier deposit.
type TxID uint32

// TransactionKind is the operation a record asks for.
type TransactionKind string

const (
	TransactionKindDeposit    TransactionKind = "deposit"
	TransactionKindWithdrawal TransactionKind = "withdrawal"
	TransactionKindDispute    TransactionKind = "dispute"
	TransactionKindResolve    TransactionKind = "resolve"
	TransactionKindChargeback TransactionKind = "chargeback"
)

// ErrUnknownTransactionKind is returned by ParseTransactionKind.
var ErrUnknownTransactionKind = errors.New("unknown transaction type")

// ErrDuplicateTransaction is returned by a ledger asked to record a TxID it
// already holds.
var ErrDuplicateTransaction = errors.New("duplicate transaction")

// ParseTransactionKind maps an input token onto a TransactionKind.
func ParseTransactionKind(s string) (TransactionKind, error) {
	switch k := TransactionKind(s); k {
	case TransactionKindDeposit, TransactionKindWithdrawal,
		TransactionKindDispute, TransactionKindResolve, TransactionKindChargeback:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownTransactionKind, s)
	}
}

// RequiresAmount returns true for the kinds that move money in or out.
func (k TransactionKind) RequiresAmount() bool {
	return k == TransactionKindDeposit || k == TransactionKindWithdrawal
}

// TransactionRecord is one parsed input row. Amount is set only for
// deposits and withdrawals.
type TransactionRecord struct {
	Kind   TransactionKind
	Client ClientID
	Tx     TxID
	Amount *Amount
}

// LedgerEntry is the recorded outcome of a successful deposit or withdrawal.
type LedgerEntry struct {
	Tx       TxID
	Client   ClientID
	Amount   Amount
	Kind     TransactionKind
	Disputed bool
}

// BelongsTo returns true if the entry was created for client.
func (e *LedgerEntry) BelongsTo(client ClientID) bool {
	return e.Client == client
}

// IsDisputable returns true if the entry is a deposit not already under dispute.
// Withdrawn funds have left the account and cannot be held.
func (e *LedgerEntry) IsDisputable() bool {
	return e.Kind == TransactionKindDeposit && !e.Disputed
}
