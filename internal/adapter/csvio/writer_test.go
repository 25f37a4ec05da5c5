package csvio

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"payments-engine/internal/core/domain"
	"payments-engine/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestSnapshotWriter_Publish(t *testing.T) {
	var buf bytes.Buffer
	w := NewSnapshotWriter(&buf)

	snapshots := []domain.AccountSnapshot{
		{
			Client:    2,
			Available: domain.MustParseAmount("2"),
			Total:     domain.MustParseAmount("2"),
		},
		{
			Client:    1,
			Available: domain.MustParseAmount("1.5"),
			Held:      domain.MustParseAmount("0.0001"),
			Total:     domain.MustParseAmount("1.5001"),
			Locked:    true,
		},
	}

	require.NoError(t, w.Publish(context.Background(), domain.NewRunInfo("in.csv"), snapshots))
	assert.Equal(t,
		"client,available,held,total,locked\n"+
			"2,2.0000,0.0000,2.0000,false\n"+
			"1,1.5000,0.0001,1.5001,true\n",
		buf.String())
	assert.Equal(t, "csv", w.Name())
}

func TestSnapshotWriter_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSnapshotWriter(&buf).Publish(context.Background(), domain.RunInfo{}, nil))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestSnapshotWriter_WriteFailure(t *testing.T) {
	sinkErr := errors.New("broken pipe")
	w := NewSnapshotWriter(failingWriter{err: sinkErr})

	err := w.Publish(context.Background(), domain.RunInfo{}, []domain.AccountSnapshot{{Client: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, sinkErr)
	assert.Equal(t, apperror.ExitIOErr, apperror.ExitCodeOf(err))
}

func TestSnapshotWriter_Cancelled(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSnapshotWriter(&buf).Publish(ctx, domain.RunInfo{}, nil)
	assert.Equal(t, apperror.ExitInterrupted, apperror.ExitCodeOf(err))
	assert.Empty(t, buf.String())
}
