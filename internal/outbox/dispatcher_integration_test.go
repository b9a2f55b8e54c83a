//go:build integration

package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	persistence "github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/persistence/postgres"
)

type capturingWriter struct {
	err      error
	messages map[string][]kafka.Message
}

func (c *capturingWriter) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	if c.err != nil {
		return c.err
	}
	if c.messages == nil {
		c.messages = make(map[string][]kafka.Message)
	}
	c.messages[topic] = append(c.messages[topic], msgs...)
	return nil
}

func startDatabase(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("worktracker"),
		postgrescontainer.WithUsername("worktracker"),
		postgrescontainer.WithPassword("worktracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				break
			}
		}
		require.False(t, time.Now().After(deadline), "database never became ready: %v", err)
		time.Sleep(time.Second)
	}

	require.NoError(t, persistence.RunMigrations(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func seedOutbox(t *testing.T, ctx context.Context, pool *pgxpool.Pool, topic, eventType, key string) {
	t.Helper()
	_, err := pool.Exec(ctx, `
        INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		"activity", key, eventType, topic, key, []byte(`{"ok":true}`), key+":"+eventType+":"+time.Now().String())
	require.NoError(t, err)
}

func TestDispatcherDeliversAndMarksPublished(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	seedOutbox(t, ctx, pool, "worktracker.activity_events", "activity.recorded", "emp_1")
	seedOutbox(t, ctx, pool, "worktracker.user_events", "user.created", "emp_2")

	writer := &capturingWriter{}
	dispatcher := NewDispatcher(pool, writer, time.Second, 10, zerolog.Nop())

	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, writer.messages["worktracker.activity_events"], 1)
	require.Len(t, writer.messages["worktracker.user_events"], 1)

	msg := writer.messages["worktracker.activity_events"][0]
	require.Equal(t, "emp_1", string(msg.Key))
	require.JSONEq(t, `{"ok":true}`, string(msg.Value))

	var pending int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&pending))
	require.Zero(t, pending)

	// A second pass finds nothing to do.
	require.NoError(t, dispatcher.processBatch(ctx))
	require.Len(t, writer.messages["worktracker.activity_events"], 1)
}

func TestDispatcherRetriesAfterDeliveryFailure(t *testing.T) {
	ctx := context.Background()
	pool := startDatabase(t, ctx)

	seedOutbox(t, ctx, pool, "worktracker.activity_events", "activity.recorded", "emp_1")

	writer := &capturingWriter{err: errors.New("broker unavailable")}
	dispatcher := NewDispatcher(pool, writer, time.Second, 10, zerolog.Nop())

	require.Error(t, dispatcher.processBatch(ctx))

	var pending int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE published_at IS NULL`).Scan(&pending))
	require.Equal(t, 1, pending, "failed delivery must leave the row claimable")

	writer.err = nil
	require.NoError(t, dispatcher.processBatch(ctx))

	require.Len(t, writer.messages["worktracker.activity_events"], 1)
}
