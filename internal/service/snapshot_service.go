package service

import (
	"cmp"
	"slices"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
)

// snapshotService implements ports.SnapshotService.
type snapshotService struct {
	accounts ports.AccountStore
	order    domain.SnapshotOrder
}

// NewSnapshotService creates a new snapshot service. An unknown order falls
// back to first-seen.
func NewSnapshotService(accounts ports.AccountStore, order domain.SnapshotOrder) ports.SnapshotService {
	return &snapshotService{accounts: accounts, order: order}
}

// Snapshots returns one snapshot per account.
func (s *snapshotService) Snapshots() []domain.AccountSnapshot {
	accounts := s.accounts.All()

	snapshots := make([]domain.AccountSnapshot, 0, len(accounts))
	for _, acct := range accounts {
		snapshots = append(snapshots, acct.Snapshot())
	}

	if s.order == domain.SnapshotOrderClientID {
		slices.SortFunc(snapshots, func(a, b domain.AccountSnapshot) int {
			return cmp.Compare(a.Client, b.Client)
		})
	}
	return snapshots
}
