package app

import (
	"context"

	"payments-engine/config"
	"payments-engine/internal/adapter/events/kafka"
	pgStorage "payments-engine/internal/adapter/storage/postgres"
	redisStorage "payments-engine/internal/adapter/storage/redis"
	"payments-engine/internal/core/ports"
	"payments-engine/pkg/apperror"

	"github.com/rs/zerolog"
)

// OpenExporters connects every exporter enabled in cfg. If one fails, the
// ones already opened are closed again.
func OpenExporters(ctx context.Context, cfg config.ExportConfig, log zerolog.Logger) ([]ports.Exporter, error) {
	var exporters []ports.Exporter
	fail := func(sink string, err error) ([]ports.Exporter, error) {
		closeExporters(exporters, log)
		return nil, apperror.ErrExportFailed(sink, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if cfg.Postgres.Enabled {
		exp, err := pgStorage.NewSnapshotExporterFromConfig(ctx, cfg.Postgres, log)
		if err != nil {
			return fail("postgresql", err)
		}
		exporters = append(exporters, exp)
	}

	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fail("redis", err)
		}
		exporters = append(exporters, redisStorage.NewSnapshotStore(rdb, cfg.Redis.KeyPrefix, cfg.Redis.TTL))
	}

	if cfg.Kafka.Enabled {
		exporters = append(exporters, kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic))
	}

	return exporters, nil
}

func closeExporters(exporters []ports.Exporter, log zerolog.Logger) {
	for _, exp := range exporters {
		if err := exp.Close(); err != nil {
			log.Warn().Err(err).Str("sink", exp.Name()).Msg("failed to close exporter")
		}
	}
}
