package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INSTANCE_ID", "bff-1")
	c := Load()
	assert.Equal(t, ":8081", c.HTTPAddr)
	assert.Equal(t, "kafka", c.EventsSink)
	assert.Equal(t, "INR", c.GatewayCurrency)
	assert.Equal(t, 30*time.Minute, c.CheckoutTTL)
	assert.Equal(t, []string{"Men", "Women", "Best Deals", "Home"}, c.DashboardCategories)
	assert.Equal(t, "bff-1", c.InstanceID)
	assert.Equal(t, 100, c.SweepLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("EVENTS_SINK", "RabbitMQ")
	t.Setenv("BACKEND_TIMEOUT", "3s")
	t.Setenv("CHECKOUT_TTL", "not-a-duration")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SWEEP_LIMIT", "25")

	c := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	assert.Equal(t, "rabbitmq", c.EventsSink)
	assert.Equal(t, 3*time.Second, c.BackendTimeout)
	assert.Equal(t, 30*time.Minute, c.CheckoutTTL)
	assert.Equal(t, slog.LevelDebug, c.LogLevel)
	assert.Equal(t, 25, c.SweepLimit)

	t.Setenv("SWEEP_LIMIT", "lots")
	assert.Equal(t, 100, Load().SweepLimit)
}
