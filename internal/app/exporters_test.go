package app

import (
	"context"
	"testing"
	"time"

	"payments-engine/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenExporters_NoneEnabled(t *testing.T) {
	exporters, err := OpenExporters(context.Background(), config.ExportConfig{Timeout: time.Second}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, exporters)
}

func TestOpenExporters_Kafka(t *testing.T) {
	cfg := config.ExportConfig{
		Timeout: time.Second,
		Kafka:   config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "account_snapshots"},
	}

	// The kafka writer connects lazily, so opening never dials.
	exporters, err := OpenExporters(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, exporters, 1)
	assert.Equal(t, "kafka", exporters[0].Name())
	assert.NoError(t, exporters[0].Close())
}

func TestOpenExporters_PostgresBadConfig(t *testing.T) {
	cfg := config.ExportConfig{
		Timeout: time.Second,
		Postgres: config.PostgresConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    5432,
			SSLMode: "not-a-mode",
			Table:   "account_snapshots",
		},
		Kafka: config.KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}, Topic: "t"},
	}

	exporters, err := OpenExporters(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, exporters)
	assert.Contains(t, err.Error(), "postgresql")
}
