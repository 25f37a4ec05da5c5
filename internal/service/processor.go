package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
	"payments-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// TransactionProcessorImpl implements ports.TransactionProcessor.
// It owns the ledger and account store for the lifetime of a run.
type TransactionProcessorImpl struct {
	ledger   ports.TransactionLedger
	accounts ports.AccountStore
	audit    ports.AuditService
	log      zerolog.Logger
}

// NewTransactionProcessor creates a new TransactionProcessorImpl.
func NewTransactionProcessor(
	ledger ports.TransactionLedger,
	accounts ports.AccountStore,
	audit ports.AuditService,
	log zerolog.Logger,
) *TransactionProcessorImpl {
	return &TransactionProcessorImpl{
		ledger:   ledger,
		accounts: accounts,
		audit:    audit,
		log:      log,
	}
}

// Run applies every record of src in input order. It stops at the first
// fatal error, leaving the remaining input unread.
func (p *TransactionProcessorImpl) Run(ctx context.Context, src ports.RecordSource) error {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return apperror.ErrCancelled(err)
		}

		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if _, err := p.Apply(record); err != nil {
			return err
		}
		processed++
	}

	p.log.Debug().Int("records", processed).Msg("input exhausted")
	return nil
}

// Apply applies a single record. Rejections are returned as outcomes; an
// error means the run must halt.
func (p *TransactionProcessorImpl) Apply(record domain.TransactionRecord) (domain.Outcome, error) {
	outcome, err := p.apply(record)
	if err != nil {
		return domain.Outcome{}, err
	}
	p.audit.Record(record, outcome)
	return outcome, nil
}

// Summary returns the run statistics so far.
func (p *TransactionProcessorImpl) Summary() domain.RunSummary {
	summary := p.audit.Summary()
	summary.Accounts = p.accounts.Len()
	summary.LedgerEntries = p.ledger.Len()
	return summary
}

func (p *TransactionProcessorImpl) apply(record domain.TransactionRecord) (domain.Outcome, error) {
	// Locked accounts accept nothing, whatever the kind.
	if acct, ok := p.accounts.Get(record.Client); ok && acct.Locked {
		return domain.Rejected(domain.RejectAccountLocked), nil
	}

	switch record.Kind {
	case domain.TransactionKindDeposit:
		amount, err := requireAmount(record)
		if err != nil {
			return domain.Outcome{}, err
		}
		return p.deposit(record, amount)
	case domain.TransactionKindWithdrawal:
		amount, err := requireAmount(record)
		if err != nil {
			return domain.Outcome{}, err
		}
		return p.withdraw(record, amount)
	case domain.TransactionKindDispute:
		return p.dispute(record), nil
	case domain.TransactionKindResolve:
		return p.resolve(record)
	case domain.TransactionKindChargeback:
		return p.chargeback(record)
	default:
		return domain.Outcome{}, apperror.ErrInvariantViolation(
			fmt.Errorf("tx %d: %w %q", record.Tx, domain.ErrUnknownTransactionKind, record.Kind))
	}
}

// requireAmount returns the record's amount. The reader guarantees one is
// present and non-negative for deposits and withdrawals.
func requireAmount(record domain.TransactionRecord) (domain.Amount, error) {
	if record.Amount == nil {
		return domain.Amount{}, apperror.ErrInvariantViolation(
			fmt.Errorf("%s tx %d has no amount", record.Kind, record.Tx))
	}
	if record.Amount.IsNegative() {
		return domain.Amount{}, apperror.ErrInvariantViolation(
			fmt.Errorf("%s tx %d has negative amount %s", record.Kind, record.Tx, record.Amount))
	}
	return *record.Amount, nil
}

func (p *TransactionProcessorImpl) deposit(record domain.TransactionRecord, amount domain.Amount) (domain.Outcome, error) {
	if _, exists := p.ledger.Lookup(record.Tx); exists {
		return domain.Rejected(domain.RejectDuplicateTransaction), nil
	}

	var available, held domain.Amount
	if acct, ok := p.accounts.Get(record.Client); ok {
		available, held = acct.Available, acct.Held
	}

	// Both the new available and the new total must stay representable.
	newAvailable, ok := available.AddChecked(amount)
	if !ok {
		return domain.Rejected(domain.RejectAmountOverflow), nil
	}
	if _, ok := newAvailable.AddChecked(held); !ok {
		return domain.Rejected(domain.RejectAmountOverflow), nil
	}

	entry := domain.LedgerEntry{
		Tx:     record.Tx,
		Client: record.Client,
		Amount: amount,
		Kind:   domain.TransactionKindDeposit,
	}
	if err := p.ledger.Record(entry); err != nil {
		return domain.Outcome{}, apperror.ErrInvariantViolation(fmt.Errorf("record deposit: %w", err))
	}

	acct := p.accounts.GetOrCreate(record.Client)
	acct.Available = newAvailable
	return domain.Applied(), nil
}

func (p *TransactionProcessorImpl) withdraw(record domain.TransactionRecord, amount domain.Amount) (domain.Outcome, error) {
	acct, ok := p.accounts.Get(record.Client)
	if !ok {
		return domain.Rejected(domain.RejectAccountNotFound), nil
	}
	if acct.Available.LessThan(amount) {
		return domain.Rejected(domain.RejectInsufficientFunds), nil
	}
	if _, exists := p.ledger.Lookup(record.Tx); exists {
		return domain.Rejected(domain.RejectDuplicateTransaction), nil
	}

	entry := domain.LedgerEntry{
		Tx:     record.Tx,
		Client: record.Client,
		Amount: amount,
		Kind:   domain.TransactionKindWithdrawal,
	}
	if err := p.ledger.Record(entry); err != nil {
		return domain.Outcome{}, apperror.ErrInvariantViolation(fmt.Errorf("record withdrawal: %w", err))
	}

	acct.Available = acct.Available.Sub(amount)
	return domain.Applied(), nil
}

func (p *TransactionProcessorImpl) dispute(record domain.TransactionRecord) domain.Outcome {
	acct, ok := p.accounts.Get(record.Client)
	if !ok {
		return domain.Rejected(domain.RejectAccountNotFound)
	}
	entry, ok := p.lookupOwned(record)
	if !ok {
		return domain.Rejected(domain.RejectTransactionNotFound)
	}
	if entry.Kind != domain.TransactionKindDeposit {
		return domain.Rejected(domain.RejectTransactionNotDisputable)
	}
	if entry.Disputed {
		return domain.Rejected(domain.RejectAlreadyDisputed)
	}
	if acct.Available.LessThan(entry.Amount) {
		return domain.Rejected(domain.RejectDisputeExceedsAvailable)
	}

	acct.Available = acct.Available.Sub(entry.Amount)
	acct.Held = acct.Held.Add(entry.Amount)
	p.ledger.MarkDisputed(record.Tx)
	return domain.Applied()
}

func (p *TransactionProcessorImpl) resolve(record domain.TransactionRecord) (domain.Outcome, error) {
	acct, entry, outcome, err := p.heldFunds(record)
	if acct == nil {
		return outcome, err
	}

	acct.Held = acct.Held.Sub(entry.Amount)
	acct.Available = acct.Available.Add(entry.Amount)
	p.ledger.ClearDisputed(record.Tx)
	return domain.Applied(), nil
}

func (p *TransactionProcessorImpl) chargeback(record domain.TransactionRecord) (domain.Outcome, error) {
	acct, entry, outcome, err := p.heldFunds(record)
	if acct == nil {
		return outcome, err
	}

	// The entry stays flagged as disputed; the account is frozen anyway.
	acct.Held = acct.Held.Sub(entry.Amount)
	acct.Locked = true
	return domain.Applied(), nil
}

// heldFunds runs the checks shared by resolve and chargeback. It returns a
// nil account together with the rejection or fatal error when the record
// cannot be applied.
func (p *TransactionProcessorImpl) heldFunds(record domain.TransactionRecord) (*domain.Account, domain.LedgerEntry, domain.Outcome, error) {
	acct, ok := p.accounts.Get(record.Client)
	if !ok {
		return nil, domain.LedgerEntry{}, domain.Rejected(domain.RejectAccountNotFound), nil
	}
	entry, ok := p.lookupOwned(record)
	if !ok {
		return nil, domain.LedgerEntry{}, domain.Rejected(domain.RejectTransactionNotFound), nil
	}
	if !entry.Disputed {
		return nil, domain.LedgerEntry{}, domain.Rejected(domain.RejectNotDisputed), nil
	}
	if acct.Held.LessThan(entry.Amount) {
		err := fmt.Errorf("client %d holds %s, %s of tx %d needs %s",
			record.Client, acct.Held, record.Kind, record.Tx, entry.Amount)
		return nil, domain.LedgerEntry{}, domain.Outcome{}, apperror.ErrInvariantViolation(err)
	}
	return acct, entry, domain.Outcome{}, nil
}

// lookupOwned finds the ledger entry a record refers to. An entry created
// for another client is treated as missing.
func (p *TransactionProcessorImpl) lookupOwned(record domain.TransactionRecord) (domain.LedgerEntry, bool) {
	entry, ok := p.ledger.Lookup(record.Tx)
	if !ok || !entry.BelongsTo(record.Client) {
		return domain.LedgerEntry{}, false
	}
	return entry, true
}

// Compile-time check: ensure TransactionProcessorImpl implements ports.TransactionProcessor
var _ ports.TransactionProcessor = (*TransactionProcessorImpl)(nil)
