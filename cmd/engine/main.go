package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"payments-engine/config"
	"payments-engine/internal/app"
	"payments-engine/pkg/apperror"
	"payments-engine/pkg/logger"
)

const usage = "usage: engine <transactions.csv>"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one engine run and returns the process exit code. Only the
// account snapshot CSV is written to stdout.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, usage)
		return apperror.ExitCodeOf(apperror.ErrUsage(usage))
	}

	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return apperror.ExitCodeOf(apperror.ErrConfig(err))
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := app.New(cfg, log, stdout).Run(ctx, args[0]); err != nil {
		log.Error().Err(err).Int("exit_code", apperror.ExitCodeOf(err)).Msg("run failed")
		return apperror.ExitCodeOf(err)
	}
	return apperror.ExitOK
}
