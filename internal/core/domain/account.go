package domain

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Account is a client's balance state. Total is derived, never stored.
type Account struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Locked    bool
}

// NewAccount creates an empty, unlocked account.
func NewAccount(client ClientID) *Account {
	return &Account{Client: client}
}

// Total returns available plus held funds.
func (a *Account) Total() Amount {
	return a.Available.Add(a.Held)
}

// Snapshot projects the account into its reported form.
func (a *Account) Snapshot() AccountSnapshot {
	return AccountSnapshot{
		Client:    a.Client,
		Available: a.Available,
		Held:      a.Held,
		Total:     a.Total(),
		Locked:    a.Locked,
	}
}

// AccountSnapshot is the final reported state of one account.
type AccountSnapshot struct {
	Client    ClientID
	Available Amount
	Held      Amount
	Total     Amount
	Locked    bool
}

// AuditHash is a BLAKE2b-256 digest over the reported fields, hex encoded.
// Exporters store it next to the row so a consumer can detect tampering.
func (s AccountSnapshot) AuditHash() string {
	canonical := strings.Join([]string{
		strconv.FormatUint(uint64(s.Client), 10),
		s.Available.String(),
		s.Held.String(),
		s.Total.String(),
		strconv.FormatBool(s.Locked),
	}, "|")
	sum := blake2b.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// SnapshotOrder controls the order accounts are reported in.
type SnapshotOrder string

const (
	// SnapshotOrderFirstSeen reports accounts in the order they were created.
	SnapshotOrderFirstSeen SnapshotOrder = "first_seen"

	// SnapshotOrderClientID reports accounts by ascending client id.
	SnapshotOrderClientID SnapshotOrder = "client_id"
)

// IsValid returns true for a known order.
func (o SnapshotOrder) IsValid() bool {
	return o == SnapshotOrderFirstSeen || o == SnapshotOrderClientID
}
