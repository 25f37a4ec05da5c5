package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payments-engine/config"
	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	run_id      UUID        NOT NULL,
	source      TEXT        NOT NULL,
	client_id   INTEGER     NOT NULL,
	available   BIGINT      NOT NULL,
	held        BIGINT      NOT NULL,
	total       BIGINT      NOT NULL,
	locked      BOOLEAN     NOT NULL,
	audit_hash  TEXT        NOT NULL,
	exported_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, client_id)
)`

const insertSnapshotSQL = `INSERT INTO %s (run_id, source, client_id, available, held, total, locked, audit_hash, exported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// SnapshotExporter writes the final account snapshots of a run into one
// table, inside a single transaction. Amounts are stored as raw
// ten-thousandths so no precision is lost.
type SnapshotExporter struct {
	*HealthCheck
	pool  Pool
	table string
	close func()
	now   func() time.Time
}

// NewSnapshotExporter creates an exporter over an existing pool. table may be
// schema qualified ("reports.account_snapshots").
func NewSnapshotExporter(pool Pool, table string) *SnapshotExporter {
	return &SnapshotExporter{
		HealthCheck: NewHealthCheck(pool),
		pool:        pool,
		table:       pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// NewSnapshotExporterFromConfig opens a pool and wraps it in an exporter
// that closes the pool on Close.
func NewSnapshotExporterFromConfig(ctx context.Context, cfg config.PostgresConfig, log zerolog.Logger) (*SnapshotExporter, error) {
	pool, err := NewPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	e := NewSnapshotExporter(pool, cfg.Table)
	e.close = pool.Close
	return e, nil
}

// Publish inserts one row per snapshot. Either every row is committed or none.
func (e *SnapshotExporter) Publish(ctx context.Context, run domain.RunInfo, snapshots []domain.AccountSnapshot) error {
	tx, err := e.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := e.insert(ctx, tx, run, snapshots); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (e *SnapshotExporter) insert(ctx context.Context, tx pgx.Tx, run domain.RunInfo, snapshots []domain.AccountSnapshot) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(createTableSQL, e.table)); err != nil {
		return fmt.Errorf("create snapshot table: %w", err)
	}

	query := fmt.Sprintf(insertSnapshotSQL, e.table)
	exportedAt := e.now()
	for _, s := range snapshots {
		_, err := tx.Exec(ctx, query,
			run.ID, run.Source, int32(s.Client),
			s.Available.Units(), s.Held.Units(), s.Total.Units(),
			s.Locked, s.AuditHash(), exportedAt,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot for client %d: %w", s.Client, err)
		}
	}
	return nil
}

// Close releases the pool if the exporter opened it.
func (e *SnapshotExporter) Close() error {
	if e.close != nil {
		e.close()
	}
	return nil
}

// Compile-time check: ensure SnapshotExporter implements ports.Exporter
var _ ports.Exporter = (*SnapshotExporter)(nil)
