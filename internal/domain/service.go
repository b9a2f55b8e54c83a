// Package domain defines the business logic for the work tracker backend.
package domain

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/events"
)

// SampleClassifier maps one raw sample to a classification. Implementations
// never fail; degraded AI calls resolve to Private inside the classifier.
type SampleClassifier interface {
	Classify(ctx context.Context, sample RawSample) Classification
}

// IngestRepository captures the persistence operations the ingestion path needs.
type IngestRepository interface {
	UserByEmployeeID(ctx context.Context, employeeID string) (*User, error)
	// InsertActivityBatch writes all records plus the batch event in one
	// transaction; either everything commits or nothing does.
	InsertActivityBatch(ctx context.Context, records []ActivityRecord, event events.ActivityBatchRecorded) error
}

// IngestService drives classification and persistence of daemon batches.
type IngestService struct {
	repo            IngestRepository
	classifier      SampleClassifier
	defaultDuration time.Duration
	concurrency     int
	logger          zerolog.Logger
}

// NewIngestService constructs an IngestService. concurrency bounds the number
// of in-flight classifications per batch (and therefore outbound AI calls).
func NewIngestService(repo IngestRepository, classifier SampleClassifier, defaultDuration time.Duration, concurrency int, logger zerolog.Logger) *IngestService {
	if concurrency < 1 {
		concurrency = 1
	}
	if defaultDuration <= 0 {
		defaultDuration = 5 * time.Second
	}
	return &IngestService{
		repo:            repo,
		classifier:      classifier,
		defaultDuration: defaultDuration,
		concurrency:     concurrency,
		logger:          logger.With().Str("component", "ingest").Logger(),
	}
}

// IngestBatch resolves the employee, classifies every sample with bounded
// concurrency, and persists one record per sample atomically. It returns the
// number of records persisted. Classification results are keyed by sample
// index, so record order always matches sample order.
func (s *IngestService) IngestBatch(ctx context.Context, employeeID string, samples []RawSample) (int, error) {
	user, err := s.repo.UserByEmployeeID(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrUserNotFound
	}
	if len(samples) == 0 {
		return 0, nil
	}

	results := make([]Classification, len(samples))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, sample := range samples {
		wg.Add(1)
		go func(i int, sample RawSample) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.classifier.Classify(ctx, sample)
		}(i, sample)
	}
	wg.Wait()

	// Nothing is committed for an aborted request.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	records := make([]ActivityRecord, len(samples))
	var workSeconds, privateSeconds, idleSeconds int64
	for i, sample := range samples {
		duration := sample.DurationSeconds
		if duration <= 0 {
			duration = int(s.defaultDuration.Seconds())
		}
		records[i] = ActivityRecord{
			UserID:          user.ID,
			StartTime:       sample.Timestamp,
			DurationSeconds: duration,
			Category:        results[i].Category,
			Details:         results[i].Details,
		}
		switch results[i].Category {
		case CategoryWork:
			workSeconds += int64(duration)
		case CategoryIdle:
			idleSeconds += int64(duration)
		default:
			privateSeconds += int64(duration)
		}
	}

	event := events.ActivityBatchRecorded{
		BatchID:        uuid.NewString(),
		EmployeeID:     employeeID,
		UserID:         user.ID,
		RecordCount:    len(records),
		WorkSeconds:    workSeconds,
		PrivateSeconds: privateSeconds,
		IdleSeconds:    idleSeconds,
		RecordedAt:     time.Now().UTC(),
	}

	if err := s.repo.InsertActivityBatch(ctx, records, event); err != nil {
		return 0, err
	}

	s.logger.Debug().
		Str("employee_id", employeeID).
		Int("records", len(records)).
		Msg("batch persisted")
	return len(records), nil
}
