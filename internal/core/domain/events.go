package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountSnapshotted is published once per account at the end of a run.
type AccountSnapshotted struct {
	RunID      uuid.UUID       `json:"run_id"`
	Source     string          `json:"source"`
	ClientID   ClientID        `json:"client_id"`
	Available  decimal.Decimal `json:"available"`
	Held       decimal.Decimal `json:"held"`
	Total      decimal.Decimal `json:"total"`
	Locked     bool            `json:"locked"`
	AuditHash  string          `json:"audit_hash"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewAccountSnapshotted builds the event for one snapshot of run.
func NewAccountSnapshotted(run RunInfo, s AccountSnapshot, at time.Time) AccountSnapshotted {
	return AccountSnapshotted{
		RunID:      run.ID,
		Source:     run.Source,
		ClientID:   s.Client,
		Available:  s.Available.Decimal(),
		Held:       s.Held.Decimal(),
		Total:      s.Total.Decimal(),
		Locked:     s.Locked,
		AuditHash:  s.AuditHash(),
		OccurredAt: at,
	}
}
