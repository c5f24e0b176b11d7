package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "CATALOG_HTTP_ADDR", "SYNC_MODE", "SYNC_TIMEOUT", "KAFKA_BROKERS", "PRODUCT_SERVICE_URL", "OUTBOX_BATCH_SIZE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":4003", cfg.HTTPAddr)
	assert.Equal(t, ":4002", cfg.CatalogAddr)
	assert.Equal(t, SyncHTTP, cfg.SyncMode)
	assert.Equal(t, 5*time.Second, cfg.SyncTimeout)
	assert.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://localhost:4002", cfg.ProductServiceURL)
	assert.Equal(t, 100, cfg.OutboxBatchSize)
	assert.True(t, cfg.SeedCatalog)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYNC_MODE", "OUTBOX")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("PRODUCT_SERVICE_URL", "http://catalog:4002/")
	t.Setenv("SYNC_TIMEOUT", "750ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SyncOutbox, cfg.SyncMode)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://catalog:4002", cfg.ProductServiceURL)
	assert.Equal(t, 750*time.Millisecond, cfg.SyncTimeout)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown sync mode", "SYNC_MODE", "carrier-pigeon"},
		{"bad timeout", "SYNC_TIMEOUT", "soon"},
		{"negative timeout", "SYNC_TIMEOUT", "-1s"},
		{"zero batch", "OUTBOX_BATCH_SIZE", "0"},
		{"bad seed flag", "SEED_CATALOG", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
