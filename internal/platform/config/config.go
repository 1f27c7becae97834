// Package config loads service configuration from environment variables and an
// optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full service configuration.
type Config struct {
	Server    Server          `mapstructure:"server"`
	Log       Log             `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Behandler BehandlerConfig `mapstructure:"behandler"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PostgresConfig configures the database pool and migrations.
type PostgresConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	TxTimeout       time.Duration `mapstructure:"tx_timeout"`
	MigrateOnStart  bool          `mapstructure:"migrate_on_start"`
}

// RedisConfig configures the optional Redis cache. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig configures the consumers.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	GroupID         string        `mapstructure:"group_id"`
	ApprecTopic     string        `mapstructure:"apprec_topic"`
	BestillingTopic string        `mapstructure:"bestilling_topic"`
	SykmeldingTopic string        `mapstructure:"sykmelding_topic"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
}

// RegistryConfig configures the external fastlege and partnerinfo registries.
type RegistryConfig struct {
	FastlegeURL    string        `mapstructure:"fastlege_url"`
	PartnerinfoURL string        `mapstructure:"partnerinfo_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

// BehandlerConfig holds behaviour toggles fixed at startup.
type BehandlerConfig struct {
	SykmeldereEnabled bool `mapstructure:"sykmeldere_enabled"`
}

var keys = []string{
	"server.addr", "server.shutdown_timeout",
	"log.level", "log.format",
	"postgres.url", "postgres.max_open_conns", "postgres.max_idle_conns",
	"postgres.conn_max_lifetime", "postgres.tx_timeout", "postgres.migrate_on_start",
	"redis.url", "redis.pool_size", "redis.min_idle_conns",
	"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
	"kafka.enabled", "kafka.brokers", "kafka.group_id", "kafka.apprec_topic",
	"kafka.bestilling_topic", "kafka.sykmelding_topic", "kafka.retry_backoff",
	"registry.fastlege_url", "registry.partnerinfo_url", "registry.timeout", "registry.cache_ttl",
	"behandler.sykmeldere_enabled",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("postgres.tx_timeout", 5*time.Second)
	v.SetDefault("postgres.migrate_on_start", true)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("kafka.enabled", true)
	v.SetDefault("kafka.group_id", "isdialogmelding-v1")
	v.SetDefault("kafka.apprec_topic", "teamsykefravr.apprec")
	v.SetDefault("kafka.bestilling_topic", "teamsykefravr.isdialogmelding-behandler-dialogmelding-bestilling")
	v.SetDefault("kafka.sykmelding_topic", "teamsykmelding.ok-sykmelding")
	v.SetDefault("kafka.retry_backoff", 5*time.Second)
	v.SetDefault("registry.timeout", 10*time.Second)
	v.SetDefault("registry.cache_ttl", time.Hour)
	v.SetDefault("behandler.sykmeldere_enabled", false)
}

// Load reads configuration from the environment (POSTGRES_URL, KAFKA_BROKERS, ...)
// and from configFile when it is non-empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Bind explicitly so Unmarshal picks up keys without defaults
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	return cfg, nil
}

// Validate checks that the configuration is usable for `serve`.
func (c *Config) Validate() error {
	if c.Postgres.URL == "" {
		return errors.New("postgres.url (POSTGRES_URL) is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers (KAFKA_BROKERS) is required when kafka is enabled")
	}
	if c.Registry.FastlegeURL == "" || c.Registry.PartnerinfoURL == "" {
		return errors.New("registry.fastlege_url and registry.partnerinfo_url are required")
	}
	return nil
}

// splitList accepts both a list and a single comma-separated env value.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
