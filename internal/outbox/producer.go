package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// KafkaProducer owns one writer per worktracker topic, created on first
// delivery. Partition keys are employee ids, so hash balancing keeps every
// event stream for one employee on a single partition and in order.
type KafkaProducer struct {
	brokers []string
	logger  zerolog.Logger

	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a producer for the given brokers.
func NewKafkaProducer(brokers []string, logger zerolog.Logger) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		logger:  logger.With().Str("component", "kafka_producer").Logger(),
		writers: make(map[string]*kafka.Writer),
	}
}

// WriteMessages delivers msgs to topic synchronously. The dispatcher marks
// outbox rows published only after this returns, so acks from every replica
// are required before reporting success.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
		Async:        false,
	}
	p.writers[topic] = writer
	p.logger.Debug().Str("topic", topic).Msg("kafka writer created")
	return writer
}

// Close shuts down every writer, returning the first error seen.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
