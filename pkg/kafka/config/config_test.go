package kafka_config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, DefaultNotificationsTopic, cfg.NotificationsTopic)
	assert.Equal(t, DefaultMailerGroupID, cfg.MailerGroupID)
	assert.Equal(t, int64(-2), cfg.ConsumerStartOffset)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv(EnvNotificationsTopic, "emails")
	t.Setenv(EnvKafkaProducerCompression, "ZSTD")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, "emails", cfg.NotificationsTopic)
	assert.Equal(t, "zstd", cfg.ProducerCompression)
}

func TestValidate_CollectsEveryViolation(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Brokers = nil
	cfg.NotificationsDLQTopic = cfg.NotificationsTopic
	cfg.ProducerCompression = "brotli"
	cfg.ProducerRequireAcks = 2
	cfg.ConsumerHeartbeatInterval = cfg.ConsumerSessionTimeout

	err = cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	for _, want := range []string{
		"At least one Kafka broker",
		"NotificationsDLQTopic must differ",
		"ProducerCompression",
		"ProducerRequireAcks",
		"ConsumerHeartbeatInterval",
	} {
		assert.Contains(t, msg, want)
	}
}
