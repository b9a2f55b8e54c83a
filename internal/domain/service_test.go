package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/events"
)

type stubIngestRepo struct {
	user      *User
	insertErr error

	inserted []ActivityRecord
	event    events.ActivityBatchRecorded
	inserts  int
}

func (s *stubIngestRepo) UserByEmployeeID(ctx context.Context, employeeID string) (*User, error) {
	return s.user, nil
}

func (s *stubIngestRepo) InsertActivityBatch(ctx context.Context, records []ActivityRecord, event events.ActivityBatchRecorded) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserts++
	s.inserted = records
	s.event = event
	return nil
}

type classifierFunc func(sample RawSample) Classification

func (f classifierFunc) Classify(ctx context.Context, sample RawSample) Classification {
	return f(sample)
}

func ruleClassifier() classifierFunc {
	return func(sample RawSample) Classification {
		switch {
		case sample.State == StateIdle:
			return Classification{Category: CategoryIdle}
		case sample.App == "code":
			details := "code - " + sample.Title
			return Classification{Category: CategoryWork, Details: &details}
		default:
			return Classification{Category: CategoryPrivate}
		}
	}
}

func TestIngestBatchUnknownEmployee(t *testing.T) {
	repo := &stubIngestRepo{}
	service := NewIngestService(repo, ruleClassifier(), 5*time.Second, 2, zerolog.Nop())

	count, err := service.IngestBatch(context.Background(), "emp_missing", []RawSample{
		{Timestamp: time.Now(), State: StateActive, App: "code"},
	})

	require.ErrorIs(t, err, ErrUserNotFound)
	require.Zero(t, count)
	require.Zero(t, repo.inserts)
}

func TestIngestBatchClassifiesAndPersistsInOrder(t *testing.T) {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	repo := &stubIngestRepo{user: &User{ID: 7, EmployeeID: "emp_abc"}}
	service := NewIngestService(repo, ruleClassifier(), 5*time.Second, 2, zerolog.Nop())

	samples := []RawSample{
		{Timestamp: start, State: StateIdle, DurationSeconds: 60},
		{Timestamp: start.Add(time.Minute), State: StateActive, App: "code", Title: "main.go", DurationSeconds: 42},
		{Timestamp: start.Add(2 * time.Minute), State: StateActive, App: "netflix"},
	}

	count, err := service.IngestBatch(context.Background(), "emp_abc", samples)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Len(t, repo.inserted, 3)

	require.Equal(t, CategoryIdle, repo.inserted[0].Category)
	require.Equal(t, 60, repo.inserted[0].DurationSeconds)
	require.Equal(t, start, repo.inserted[0].StartTime)

	require.Equal(t, CategoryWork, repo.inserted[1].Category)
	require.Equal(t, 42, repo.inserted[1].DurationSeconds)
	require.NotNil(t, repo.inserted[1].Details)
	require.Equal(t, "code - main.go", *repo.inserted[1].Details)

	// Missing duration falls back to the configured default.
	require.Equal(t, CategoryPrivate, repo.inserted[2].Category)
	require.Equal(t, 5, repo.inserted[2].DurationSeconds)
	require.Nil(t, repo.inserted[2].Details)

	for _, record := range repo.inserted {
		require.Equal(t, int64(7), record.UserID)
	}

	require.NotEmpty(t, repo.event.BatchID)
	require.Equal(t, "emp_abc", repo.event.EmployeeID)
	require.Equal(t, int64(7), repo.event.UserID)
	require.Equal(t, 3, repo.event.RecordCount)
	require.Equal(t, int64(42), repo.event.WorkSeconds)
	require.Equal(t, int64(5), repo.event.PrivateSeconds)
	require.Equal(t, int64(60), repo.event.IdleSeconds)
}

func TestIngestBatchEmptyPayload(t *testing.T) {
	repo := &stubIngestRepo{user: &User{ID: 1, EmployeeID: "emp_abc"}}
	service := NewIngestService(repo, ruleClassifier(), 5*time.Second, 2, zerolog.Nop())

	count, err := service.IngestBatch(context.Background(), "emp_abc", nil)
	require.NoError(t, err)
	require.Zero(t, count)
	require.Zero(t, repo.inserts)
}

func TestIngestBatchPropagatesPersistError(t *testing.T) {
	boom := errors.New("boom")
	repo := &stubIngestRepo{user: &User{ID: 1, EmployeeID: "emp_abc"}, insertErr: boom}
	service := NewIngestService(repo, ruleClassifier(), 5*time.Second, 2, zerolog.Nop())

	count, err := service.IngestBatch(context.Background(), "emp_abc", []RawSample{
		{Timestamp: time.Now(), State: StateActive, App: "code"},
	})

	require.ErrorIs(t, err, boom)
	require.Zero(t, count)
}

func TestIngestBatchCanceledContextSkipsPersist(t *testing.T) {
	repo := &stubIngestRepo{user: &User{ID: 1, EmployeeID: "emp_abc"}}
	service := NewIngestService(repo, ruleClassifier(), 5*time.Second, 2, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := service.IngestBatch(ctx, "emp_abc", []RawSample{
		{Timestamp: time.Now(), State: StateActive, App: "code"},
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, count)
	require.Zero(t, repo.inserts)
}

func TestIngestBatchBoundsConcurrency(t *testing.T) {
	repo := &stubIngestRepo{user: &User{ID: 1, EmployeeID: "emp_abc"}}

	var mu = make(chan struct{}, 1)
	inFlight, peak := 0, 0
	slow := classifierFunc(func(sample RawSample) Classification {
		mu <- struct{}{}
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		<-mu
		time.Sleep(5 * time.Millisecond)
		mu <- struct{}{}
		inFlight--
		<-mu
		return Classification{Category: CategoryPrivate}
	})

	service := NewIngestService(repo, slow, 5*time.Second, 2, zerolog.Nop())

	samples := make([]RawSample, 8)
	for i := range samples {
		samples[i] = RawSample{Timestamp: time.Now(), State: StateActive, App: "unknown"}
	}

	count, err := service.IngestBatch(context.Background(), "emp_abc", samples)
	require.NoError(t, err)
	require.Equal(t, 8, count)
	require.LessOrEqual(t, peak, 2)
}
