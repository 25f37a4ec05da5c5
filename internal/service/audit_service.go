package service

import (
	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"

	"github.com/rs/zerolog"
)

type auditService struct {
	applied  int
	rejected map[domain.RejectReason]int
	log      zerolog.Logger
}

// NewAuditService creates a new audit service.
// Rejections are written to the logger at debug level.
func NewAuditService(log zerolog.Logger) ports.AuditService {
	return &auditService{
		rejected: make(map[domain.RejectReason]int),
		log:      log,
	}
}

// Record counts one outcome. Runs are single-threaded, so this is synchronous.
func (s *auditService) Record(record domain.TransactionRecord, outcome domain.Outcome) {
	if outcome.IsApplied() {
		s.applied++
		return
	}

	s.rejected[outcome.Reason]++
	s.log.Debug().
		Str("kind", string(record.Kind)).
		Uint16("client", uint16(record.Client)).
		Uint32("tx", uint32(record.Tx)).
		Str("reason", string(outcome.Reason)).
		Msg("record rejected")
}

// Summary returns the counts so far. Accounts and ledger size are left for
// the processor to fill in.
func (s *auditService) Summary() domain.RunSummary {
	rejected := make(map[domain.RejectReason]int, len(s.rejected))
	for reason, n := range s.rejected {
		rejected[reason] = n
	}
	return domain.RunSummary{
		Applied:  s.applied,
		Rejected: rejected,
	}
}
