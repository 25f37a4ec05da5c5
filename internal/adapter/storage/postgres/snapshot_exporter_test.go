package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"payments-engine/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestExporter(t *testing.T, table string) (*SnapshotExporter, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	e := NewSnapshotExporter(mock, table)
	e.now = func() time.Time { return fixedNow }
	return e, mock
}

func testSnapshots() []domain.AccountSnapshot {
	a := domain.NewAccount(1)
	a.Available = domain.MustParseAmount("1.5")
	a.Held = domain.MustParseAmount("0.25")
	b := domain.NewAccount(2)
	b.Locked = true
	return []domain.AccountSnapshot{a.Snapshot(), b.Snapshot()}
}

func TestSnapshotExporter_Publish(t *testing.T) {
	e, mock := newTestExporter(t, "account_snapshots")
	run := domain.NewRunInfo("transactions.csv")
	snaps := testSnapshots()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "account_snapshots"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(`INSERT INTO "account_snapshots"`).
		WithArgs(run.ID, "transactions.csv", int32(1),
			int64(15000), int64(2500), int64(17500),
			false, snaps[0].AuditHash(), fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO "account_snapshots"`).
		WithArgs(run.ID, "transactions.csv", int32(2),
			int64(0), int64(0), int64(0),
			true, snaps[1].AuditHash(), fixedNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := e.Publish(context.Background(), run, snaps)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotExporter_Publish_SchemaQualifiedTable(t *testing.T) {
	e, mock := newTestExporter(t, "reports.snapshots")

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "reports"\."snapshots"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCommit()

	err := e.Publish(context.Background(), domain.NewRunInfo("in.csv"), nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotExporter_Publish_InsertFailureRollsBack(t *testing.T) {
	e, mock := newTestExporter(t, "account_snapshots")
	dbErr := errors.New("unique violation")

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec("INSERT INTO").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(dbErr)
	mock.ExpectRollback()

	err := e.Publish(context.Background(), domain.NewRunInfo("in.csv"), testSnapshots())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "client 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotExporter_Publish_CreateTableFailure(t *testing.T) {
	e, mock := newTestExporter(t, "account_snapshots")

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := e.Publish(context.Background(), domain.NewRunInfo("in.csv"), testSnapshots())
	assert.ErrorContains(t, err, "create snapshot table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotExporter_Publish_BeginFailure(t *testing.T) {
	e, mock := newTestExporter(t, "account_snapshots")

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := e.Publish(context.Background(), domain.NewRunInfo("in.csv"), testSnapshots())
	assert.ErrorContains(t, err, "begin tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotExporter_Publish_CommitFailure(t *testing.T) {
	e, mock := newTestExporter(t, "account_snapshots")

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

	err := e.Publish(context.Background(), domain.NewRunInfo("in.csv"), nil)
	assert.ErrorContains(t, err, "commit tx")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotExporter_PingAndName(t *testing.T) {
	e, mock := newTestExporter(t, "account_snapshots")

	mock.ExpectExec("SELECT 1").WillReturnResult(pgxmock.NewResult("SELECT", 1))

	assert.NoError(t, e.Ping(context.Background()))
	assert.Equal(t, "postgresql", e.Name())
	assert.NoError(t, e.Close(), "close without an owned pool is a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}
