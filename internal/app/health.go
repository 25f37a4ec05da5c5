package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payments-engine/internal/core/ports"
	"payments-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// checkHealth pings every dependency and logs its status. All checkers run
// even after a failure so the log shows the full picture.
func checkHealth(ctx context.Context, timeout time.Duration, log zerolog.Logger, checkers ...ports.HealthChecker) error {
	var errs []error
	for _, checker := range checkers {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := checker.Ping(pingCtx)
		cancel()

		if err != nil {
			log.Error().Err(err).Str("dependency", checker.Name()).Msg("unhealthy")
			errs = append(errs, apperror.ErrExportFailed(checker.Name(), fmt.Errorf("ping: %w", err)))
			continue
		}
		log.Debug().Str("dependency", checker.Name()).Msg("healthy")
	}
	return errors.Join(errs...)
}
