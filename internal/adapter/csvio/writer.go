package csvio

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
	"payments-engine/pkg/apperror"
)

// OutputHeader is the first row of the snapshot CSV.
var OutputHeader = []string{"client", "available", "held", "total", "locked"}

// SnapshotWriter writes account snapshots as CSV.
type SnapshotWriter struct {
	w io.Writer
}

// NewSnapshotWriter creates a SnapshotWriter writing to w.
func NewSnapshotWriter(w io.Writer) *SnapshotWriter {
	return &SnapshotWriter{w: w}
}

// Name identifies the sink in logs.
func (s *SnapshotWriter) Name() string { return "csv" }

// Publish writes the header followed by one row per snapshot.
func (s *SnapshotWriter) Publish(ctx context.Context, _ domain.RunInfo, snapshots []domain.AccountSnapshot) error {
	if err := ctx.Err(); err != nil {
		return apperror.ErrCancelled(err)
	}

	cw := csv.NewWriter(s.w)
	if err := cw.Write(OutputHeader); err != nil {
		return apperror.ErrOutputUnwritable(err)
	}

	row := make([]string, len(OutputHeader))
	for _, snap := range snapshots {
		row[0] = strconv.FormatUint(uint64(snap.Client), 10)
		row[1] = snap.Available.String()
		row[2] = snap.Held.String()
		row[3] = snap.Total.String()
		row[4] = strconv.FormatBool(snap.Locked)
		if err := cw.Write(row); err != nil {
			return apperror.ErrOutputUnwritable(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperror.ErrOutputUnwritable(err)
	}
	return nil
}

var _ ports.SnapshotSink = (*SnapshotWriter)(nil)
