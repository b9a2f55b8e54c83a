// Package outbox persists and delivers domain events to Kafka.
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Message is one claimed outbox row ready for delivery.
type Message struct {
	EventID      int64
	AggregateID  string
	EventType    string
	Topic        string
	PartitionKey string
	Payload      []byte
}

// Dispatcher drains the outbox table and delivers events to Kafka. Claim,
// delivery, and the published mark share one transaction, so a failed
// delivery leaves the rows unpublished for the next poll (at-least-once).
type Dispatcher struct {
	pool             *pgxpool.Pool
	producer         messageWriter
	pollInterval     time.Duration
	batchSize        int
	logger           zerolog.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(pool *pgxpool.Pool, producer messageWriter, pollInterval time.Duration, batchSize int, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		pool:             pool,
		producer:         producer,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		logger:           logger.With().Str("component", "outbox").Logger(),
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error().Err(err).Msg("outbox dispatch failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	start := time.Now()

	tx, err := d.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	messages, err := fetchAndClaim(ctx, tx, d.batchSize)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	if err := d.deliver(ctx, messages); err != nil {
		failedCounter.Add(float64(len(messages)))
		// Rows stay unpublished; the next poll retries them.
		return err
	}

	if err := markPublished(ctx, tx, messages); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	deliveredCounter.Add(float64(len(messages)))
	return nil
}

func fetchAndClaim(ctx context.Context, tx pgx.Tx, limit int) ([]Message, error) {
	const query = `SELECT event_id, aggregate_id, event_type, topic, partition_key, payload
        FROM outbox
        WHERE published_at IS NULL
        ORDER BY event_id
        LIMIT $1
        FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.EventID, &m.AggregateID, &m.EventType, &m.Topic, &m.PartitionKey, &m.Payload); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (d *Dispatcher) deliver(ctx context.Context, messages []Message) error {
	byTopic := make(map[string][]kafka.Message)
	for _, m := range messages {
		byTopic[m.Topic] = append(byTopic[m.Topic], kafka.Message{
			Key:   []byte(m.PartitionKey),
			Value: m.Payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(m.EventType)},
				{Key: "aggregate_id", Value: []byte(m.AggregateID)},
			},
		})
	}

	for topic, msgs := range byTopic {
		if err := d.producer.WriteMessages(ctx, topic, msgs...); err != nil {
			return err
		}
	}
	return nil
}

func markPublished(ctx context.Context, tx pgx.Tx, messages []Message) error {
	ids := make([]int64, len(messages))
	for i, m := range messages {
		ids[i] = m.EventID
	}
	_, err := tx.Exec(ctx, `UPDATE outbox SET published_at = now() WHERE event_id = ANY($1)`, ids)
	return err
}
