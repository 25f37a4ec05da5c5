package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// SnapshotStore mirrors account snapshots into one Redis hash per client.
type SnapshotStore struct {
	*HealthCheck
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewSnapshotStore creates a Redis-backed snapshot store. A zero ttl keeps
// the hashes forever.
func NewSnapshotStore(client *goredis.Client, prefix string, ttl time.Duration) *SnapshotStore {
	return &SnapshotStore{
		HealthCheck: NewHealthCheck(client),
		client:      client,
		prefix:      prefix,
		ttl:         ttl,
	}
}

// Key returns the hash key for a client.
func (s *SnapshotStore) Key(client domain.ClientID) string {
	return s.prefix + strconv.FormatUint(uint64(client), 10)
}

// Publish writes every snapshot in one MULTI/EXEC block.
func (s *SnapshotStore) Publish(ctx context.Context, run domain.RunInfo, snapshots []domain.AccountSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, snap := range snapshots {
			key := s.Key(snap.Client)
			pipe.HSet(ctx, key,
				"available", snap.Available.String(),
				"held", snap.Held.String(),
				"total", snap.Total.String(),
				"locked", strconv.FormatBool(snap.Locked),
				"run_id", run.ID.String(),
				"source", run.Source,
				"audit_hash", snap.AuditHash(),
			)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis snapshot publish: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *SnapshotStore) Close() error {
	return s.client.Close()
}

var _ ports.Exporter = (*SnapshotStore)(nil)
