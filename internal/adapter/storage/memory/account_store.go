package memory

import (
	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
)

// AccountStore is an in-memory implementation of ports.AccountStore that
// remembers the order clients were first stored in.
type AccountStore struct {
	accounts map[domain.ClientID]*domain.Account
	order    []domain.ClientID
}

// NewAccountStore creates an empty store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[domain.ClientID]*domain.Account),
	}
}

// GetOrCreate returns the client's account, creating an empty one if needed.
func (s *AccountStore) GetOrCreate(client domain.ClientID) *domain.Account {
	if a, ok := s.accounts[client]; ok {
		return a
	}
	a := domain.NewAccount(client)
	s.accounts[client] = a
	s.order = append(s.order, client)
	return a
}

// Get returns the client's account if it exists.
func (s *AccountStore) Get(client domain.ClientID) (*domain.Account, bool) {
	a, ok := s.accounts[client]
	return a, ok
}

// All returns the accounts in first-stored order.
func (s *AccountStore) All() []*domain.Account {
	all := make([]*domain.Account, 0, len(s.order))
	for _, client := range s.order {
		all = append(all, s.accounts[client])
	}
	return all
}

// Len returns the number of accounts.
func (s *AccountStore) Len() int {
	return len(s.accounts)
}

var _ ports.AccountStore = (*AccountStore)(nil)
