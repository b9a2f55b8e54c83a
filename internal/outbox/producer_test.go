package outbox

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestProducerWriterConfiguration(t *testing.T) {
	producer := NewKafkaProducer([]string{"kafka:9092"}, zerolog.Nop())
	t.Cleanup(func() { _ = producer.Close() })

	writer := producer.writerForTopic("worktracker.activity_events")

	require.Equal(t, "worktracker.activity_events", writer.Topic)
	require.IsType(t, &kafka.Hash{}, writer.Balancer)
	require.Equal(t, kafka.RequireAll, writer.RequiredAcks)
	require.Equal(t, kafka.Snappy, writer.Compression)
	require.False(t, writer.Async)
}

func TestProducerReusesWriterPerTopic(t *testing.T) {
	producer := NewKafkaProducer([]string{"kafka:9092"}, zerolog.Nop())
	t.Cleanup(func() { _ = producer.Close() })

	first := producer.writerForTopic("worktracker.user_events")
	second := producer.writerForTopic("worktracker.user_events")
	require.Same(t, first, second)

	other := producer.writerForTopic("worktracker.activity_events")
	require.NotSame(t, first, other)
	require.Len(t, producer.writers, 2)
}
