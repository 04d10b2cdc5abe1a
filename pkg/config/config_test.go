package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "")
	t.Setenv("REFRESH_TOKEN_TTL_HOURS", "")

	cfg := Load("orders")
	assert.Equal(t, "orders", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7*24, cfg.RefreshTTLHours)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "orders-blue")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "5")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")

	cfg := Load("orders")
	assert.Equal(t, "orders-blue", cfg.ServiceName)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, 5, cfg.AccessTTLMin)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestCSV(t *testing.T) {
	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a"}, CSV("a"))
	assert.Equal(t, []string{"a", "b"}, CSV(" a , b ,,"))
}

func TestEnvIntDefaultBadValue(t *testing.T) {
	t.Setenv("SOME_INT", "not-a-number")
	assert.Equal(t, 42, EnvIntDefault("SOME_INT", 42))
}
