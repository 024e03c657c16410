// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs for
// the indexer, the query engine, and the optional auxiliary components
// (Kafka notifier, Redis cache, Postgres mirror, metrics server).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Indexer  IndexerConfig  `yaml:"indexer"`
	Query    QueryConfig    `yaml:"query"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// IndexerConfig controls the build pipeline's defaults. CLI flags always
// take precedence over these values.
type IndexerConfig struct {
	OutDir    string `yaml:"outDir"`
	MemMB     int    `yaml:"memMB"`
	ReportMB  int    `yaml:"reportMB"`
	KafkaNote bool   `yaml:"kafkaNotify"`
	PGMirror  bool   `yaml:"postgresMirror"`
}

// QueryConfig controls the query CLI's defaults.
type QueryConfig struct {
	Limit     int  `yaml:"limit"`
	Offset    int  `yaml:"offset"`
	UseCache  bool `yaml:"cache"`
}

// PostgresConfig holds PostgreSQL connection parameters for the optional
// manifest metadata mirror.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds Kafka broker settings for the build-complete notifier.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	CompleteTopic string   `yaml:"completeTopic"`
}

// RedisConfig holds Redis connection and caching parameters for the query
// result cache.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"poolSize"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the metrics server address loaded from the file or
// INVIDX_METRICS_ADDR. Neither CLI reads it; both take the server address
// only from --metrics-addr.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a YAML config file (if path is non-empty) and applies
// environment-variable overrides. An empty path yields the defaults plus
// overrides; a non-empty path that cannot be read or parsed is an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Indexer: IndexerConfig{
			OutDir:   "out",
			MemMB:    512,
			ReportMB: 200,
		},
		Query: QueryConfig{
			Limit:  50,
			Offset: 0,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "invidx",
			User:            "invidx",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			CompleteTopic: "invidx.index.complete",
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: 10,
			CacheTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Addr: "",
		},
	}
}

// applyEnvOverrides reads INVIDX_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INVIDX_OUT_DIR"); v != "" {
		cfg.Indexer.OutDir = v
	}
	if v := os.Getenv("INVIDX_MEM_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.MemMB = n
		}
	}
	if v := os.Getenv("INVIDX_REPORT_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.ReportMB = n
		}
	}
	if v := os.Getenv("INVIDX_QUERY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Query.Limit = n
		}
	}
	if v := os.Getenv("INVIDX_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("INVIDX_POSTGRES_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = n
		}
	}
	if v := os.Getenv("INVIDX_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("INVIDX_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("INVIDX_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("INVIDX_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("INVIDX_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("INVIDX_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("INVIDX_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("INVIDX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INVIDX_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("INVIDX_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}
