package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"payments-engine/internal/core/domain"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PENG"

// ConfigFileEnv names the variable that may point at a config file.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Config holds all application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Engine EngineConfig `mapstructure:"engine"`
	Export ExportConfig `mapstructure:"export"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type EngineConfig struct {
	Order domain.SnapshotOrder `mapstructure:"order"` // first_seen, client_id
}

// ExportConfig configures the optional snapshot exporters. All are off by
// default; the CSV on stdout is always written.
type ExportConfig struct {
	Timeout  time.Duration  `mapstructure:"timeout"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

type PostgresConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Table           string        `mapstructure:"table"`
}

// DSN returns the PostgreSQL connection string. Credentials are escaped.
func (d PostgresConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"` // 0 keeps keys forever
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PENG_ (Payments ENGine).
// Nested keys use underscore: PENG_LOG_LEVEL, PENG_EXPORT_REDIS_ENABLED, etc.
// A .env file in the working directory is loaded first and never overrides
// variables that are already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("engine.order", string(domain.SnapshotOrderFirstSeen))
	v.SetDefault("export.timeout", "10s")
	v.SetDefault("export.postgres.enabled", false)
	v.SetDefault("export.postgres.host", "localhost")
	v.SetDefault("export.postgres.port", 5432)
	v.SetDefault("export.postgres.user", "postgres")
	v.SetDefault("export.postgres.password", "postgres")
	v.SetDefault("export.postgres.dbname", "payments_engine")
	v.SetDefault("export.postgres.sslmode", "disable")
	v.SetDefault("export.postgres.max_conns", 4)
	v.SetDefault("export.postgres.min_conns", 1)
	v.SetDefault("export.postgres.conn_max_lifetime", "30m")
	v.SetDefault("export.postgres.table", "account_snapshots")
	v.SetDefault("export.redis.enabled", false)
	v.SetDefault("export.redis.host", "localhost")
	v.SetDefault("export.redis.port", 6379)
	v.SetDefault("export.redis.password", "")
	v.SetDefault("export.redis.db", 0)
	v.SetDefault("export.redis.key_prefix", "account:")
	v.SetDefault("export.redis.ttl", "0s")
	v.SetDefault("export.kafka.enabled", false)
	v.SetDefault("export.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("export.kafka.topic", "account_snapshots")

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PENG_EXPORT_REDIS_HOST -> export.redis.host
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if !c.Engine.Order.IsValid() {
		return fmt.Errorf("engine.order %q: must be %s or %s",
			c.Engine.Order, domain.SnapshotOrderFirstSeen, domain.SnapshotOrderClientID)
	}
	if c.Export.Timeout <= 0 {
		return fmt.Errorf("export.timeout %s: must be positive", c.Export.Timeout)
	}
	if c.Export.Postgres.Enabled && strings.TrimSpace(c.Export.Postgres.Table) == "" {
		return errors.New("export.postgres.table: must not be empty")
	}
	if c.Export.Kafka.Enabled {
		if len(c.Export.Kafka.Brokers) == 0 {
			return errors.New("export.kafka.brokers: at least one broker is required")
		}
		if c.Export.Kafka.Topic == "" {
			return errors.New("export.kafka.topic: must not be empty")
		}
	}
	return nil
}
