package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitList(" a:9092, ,b:9092 "))
	assert.Empty(t, splitList(""))
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("TENANT_BASE_DOMAIN", " Academy.Example ")
	t.Setenv("TENANT_FALLBACK_SLUG", "main")
	t.Setenv("TENANT_CACHE_TTL", "2m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.Equal(t, "production", cfg.Server.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "academy.example", cfg.Tenant.BaseDomain)
	assert.Equal(t, "main", cfg.Tenant.FallbackSlug)
	assert.Equal(t, 2*time.Minute, cfg.Tenant.CacheTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "shop.order.created", cfg.Kafka.OrderTopic)
}
