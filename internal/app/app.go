// Package app wires the engine together for one run over one input file.
package app

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"slices"

	"payments-engine/config"
	"payments-engine/internal/adapter/csvio"
	"payments-engine/internal/adapter/storage/memory"
	"payments-engine/internal/core/domain"
	"payments-engine/internal/core/ports"
	"payments-engine/internal/service"
	"payments-engine/pkg/apperror"
	"payments-engine/pkg/logger"

	"github.com/rs/zerolog"
)

// App runs the engine. Snapshots are written to stdout as CSV and mirrored
// to any enabled exporters first.
type App struct {
	cfg           *config.Config
	log           zerolog.Logger
	stdout        io.Writer
	openExporters func(ctx context.Context) ([]ports.Exporter, error)
}

// New creates an App.
func New(cfg *config.Config, log zerolog.Logger, stdout io.Writer) *App {
	a := &App{
		cfg:    cfg,
		log:    log,
		stdout: stdout,
	}
	a.openExporters = func(ctx context.Context) ([]ports.Exporter, error) {
		return OpenExporters(ctx, cfg.Export, a.log)
	}
	return a
}

// Run processes the CSV file at path. Nothing is written to stdout unless
// every record was processed and every exporter succeeded.
func (a *App) Run(ctx context.Context, path string) error {
	run := domain.NewRunInfo(path)
	log := logger.ForRun(a.log, run.ID.String(), run.Source)

	exporters, err := a.openExporters(ctx)
	if err != nil {
		return err
	}
	defer closeExporters(exporters, log)

	checkers := make([]ports.HealthChecker, 0, len(exporters))
	for _, exp := range exporters {
		checkers = append(checkers, exp)
	}
	if err := checkHealth(ctx, a.cfg.Export.Timeout, log, checkers...); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return apperror.ErrInputUnavailable(path, err)
	}
	defer f.Close()

	src, err := csvio.NewRecordReader(f)
	if err != nil {
		return err
	}

	accounts := memory.NewAccountStore()
	processor := service.NewTransactionProcessor(
		memory.NewTransactionLedger(),
		accounts,
		service.NewAuditService(log),
		log,
	)

	log.Info().Msg("processing transactions")
	if err := processor.Run(ctx, src); err != nil {
		return err
	}

	summary := processor.Summary()
	event := log.Info().
		Int("applied", summary.Applied).
		Int("rejected", summary.TotalRejected()).
		Int("accounts", summary.Accounts).
		Int("ledger_entries", summary.LedgerEntries)
	for _, reason := range slices.Sorted(maps.Keys(summary.Rejected)) {
		event = event.Int("rejected_"+string(reason), summary.Rejected[reason])
	}
	event.Msg("transactions processed")

	snapshots := service.NewSnapshotService(accounts, a.cfg.Engine.Order).Snapshots()

	for _, exp := range exporters {
		if err := a.export(ctx, exp, run, snapshots); err != nil {
			return err
		}
		log.Info().Str("sink", exp.Name()).Int("accounts", len(snapshots)).Msg("snapshots exported")
	}

	return csvio.NewSnapshotWriter(a.stdout).Publish(ctx, run, snapshots)
}

func (a *App) export(ctx context.Context, sink ports.SnapshotSink, run domain.RunInfo, snapshots []domain.AccountSnapshot) error {
	exportCtx, cancel := context.WithTimeout(ctx, a.cfg.Export.Timeout)
	defer cancel()

	err := sink.Publish(exportCtx, run, snapshots)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return apperror.ErrCancelled(errors.Join(ctx.Err(), err))
	}
	return apperror.ErrExportFailed(sink.Name(), err)
}
