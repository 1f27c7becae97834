package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Second, cfg.Postgres.TxTimeout)
	assert.Equal(t, "teamsykefravr.apprec", cfg.Kafka.ApprecTopic)
	assert.False(t, cfg.Behandler.SykmeldereEnabled)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("POSTGRES_URL", "postgres://u:p@localhost:5432/isdialogmelding")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("BEHANDLER_SYKMELDERE_ENABLED", "true")
	t.Setenv("REGISTRY_TIMEOUT", "3s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/isdialogmelding", cfg.Postgres.URL)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Behandler.SykmeldereEnabled)
	assert.Equal(t, 3*time.Second, cfg.Registry.Timeout)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  addr: \":9090\"\nlog:\n  format: text\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Postgres: PostgresConfig{URL: "postgres://localhost/db"},
		Kafka:    KafkaConfig{Enabled: true, Brokers: []string{"localhost:9092"}},
		Registry: RegistryConfig{FastlegeURL: "http://fastlege", PartnerinfoURL: "http://partnerinfo"},
	}
	assert.NoError(t, valid.Validate())

	missingDB := valid
	missingDB.Postgres.URL = ""
	assert.Error(t, missingDB.Validate())

	missingBrokers := valid
	missingBrokers.Kafka.Brokers = nil
	assert.Error(t, missingBrokers.Validate())

	kafkaDisabled := missingBrokers
	kafkaDisabled.Kafka.Enabled = false
	assert.NoError(t, kafkaDisabled.Validate())
}
