package domain

// OutcomeStatus tells whether a record changed any state.
type OutcomeStatus string

const (
	OutcomeStatusApplied  OutcomeStatus = "APPLIED"
	OutcomeStatusRejected OutcomeStatus = "REJECTED"
)

// RejectReason names the rule a rejected record broke.
type RejectReason string

const (
	RejectAccountLocked            RejectReason = "account_locked"
	RejectAccountNotFound          RejectReason = "account_not_found"
	RejectDuplicateTransaction     RejectReason = "duplicate_transaction"
	RejectInsufficientFunds        RejectReason = "insufficient_funds"
	RejectAmountOverflow           RejectReason = "amount_overflow"
	RejectTransactionNotFound      RejectReason = "transaction_not_found"
	RejectTransactionNotDisputable RejectReason = "transaction_not_disputable"
	RejectAlreadyDisputed          RejectReason = "already_disputed"
	RejectDisputeExceedsAvailable  RejectReason = "dispute_exceeds_available"
	RejectNotDisputed              RejectReason = "not_disputed"
)

// Outcome is the result of applying one record. A rejected record leaves
// every account and ledger entry untouched.
type Outcome struct {
	Status OutcomeStatus
	Reason RejectReason
}

// Applied returns the outcome of a record that changed state.
func Applied() Outcome {
	return Outcome{Status: OutcomeStatusApplied}
}

// Rejected returns the outcome of a record that was dropped.
func Rejected(reason RejectReason) Outcome {
	return Outcome{Status: OutcomeStatusRejected, Reason: reason}
}

// IsApplied returns true if the record changed state.
func (o Outcome) IsApplied() bool {
	return o.Status == OutcomeStatusApplied
}
