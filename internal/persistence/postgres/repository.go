// Package postgres provides pgx-backed persistence for users, activity
// records, and outbox events.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/domain"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/events"
	"github.com/Ashish-Ram0906/remote-work-tracker-backend/internal/observability"
)

// Repository provides Postgres-backed persistence for the backend.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, employee_id, full_name, title, email, hashed_password, role, manager_id`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.EmployeeID, &u.FullName, &u.Title, &u.Email, &u.HashedPassword, &u.Role, &u.ManagerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UserByEmployeeID resolves the daemon-facing employee identifier.
func (r *Repository) UserByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE employee_id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, employeeID))
}

// UserByEmail resolves a user by login email.
func (r *Repository) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// UserByID resolves a user by primary key.
func (r *Repository) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// CreateUser inserts the account and records a user.created outbox event in
// the same transaction.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insert = `INSERT INTO users (employee_id, full_name, title, email, hashed_password, role, manager_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`

	err = tx.QueryRow(ctx, insert,
		user.EmployeeID,
		user.FullName,
		user.Title,
		user.Email,
		user.HashedPassword,
		user.Role,
		user.ManagerID,
	).Scan(&user.ID)
	if err != nil {
		return nil, err
	}

	err = insertOutbox(ctx, tx, "user", user.EmployeeID, "user.created", user.EmployeeID, events.UserCreated{
		UserID:     user.ID,
		EmployeeID: user.EmployeeID,
		Email:      user.Email,
		Role:       user.Role,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	return r.queryUsers(ctx, query)
}

// UpdateUser applies a partial update; absent fields keep their current
// value, while an explicitly provided nil manager clears the assignment.
func (r *Repository) UpdateUser(ctx context.Context, id int64, updates domain.UserUpdate) (*domain.User, error) {
	query := `UPDATE users
        SET role = COALESCE($2, role),
            manager_id = CASE WHEN $3::bool THEN $4 ELSE manager_id END,
            title = COALESCE($5, title)
        WHERE id = $1
        RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, id, updates.Role, updates.SetManagerID, updates.ManagerID, updates.Title))
}

// DeleteUser removes the account (activity records cascade) and records a
// user.deleted outbox event in the same transaction.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	var employeeID string
	err = tx.QueryRow(ctx, `DELETE FROM users WHERE id=$1 RETURNING employee_id`, id).Scan(&employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = nil
			return tx.Commit(ctx)
		}
		return err
	}

	err = insertOutbox(ctx, tx, "user", employeeID, "user.deleted", employeeID, events.UserDeleted{
		UserID:     id,
		EmployeeID: employeeID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	return err
}

// UpdatePassword replaces a user's password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET hashed_password=$2 WHERE id=$1`, id, hashedPassword)
	return err
}

// ListDirectReports returns the users managed by managerID.
func (r *Repository) ListDirectReports(ctx context.Context, managerID int64) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE manager_id=$1 ORDER BY id`
	return r.queryUsers(ctx, query, managerID)
}

// ListManagers returns every user with the manager role.
func (r *Repository) ListManagers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role=$1 ORDER BY id`
	return r.queryUsers(ctx, query, domain.RoleManager)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.EmployeeID, &u.FullName, &u.Title, &u.Email, &u.HashedPassword, &u.Role, &u.ManagerID); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// InsertActivityBatch writes every record plus the batch outbox event inside
// a single transaction. A failure anywhere rolls back the whole batch.
func (r *Repository) InsertActivityBatch(ctx context.Context, records []domain.ActivityRecord, event events.ActivityBatchRecorded) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insert = `INSERT INTO activity_logs (user_id, start_time, duration_seconds, category, details)
        VALUES ($1,$2,$3,$4,$5)`

	for _, record := range records {
		if _, err = tx.Exec(ctx, insert,
			record.UserID,
			record.StartTime,
			record.DurationSeconds,
			record.Category,
			record.Details,
		); err != nil {
			return err
		}
	}

	err = insertOutbox(ctx, tx, "activity_batch", event.BatchID, "activity.recorded", event.EmployeeID, event)
	if err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordBatchPersisted(event.RecordedAt)
	return nil
}

// CategorySummary sums durations per category over [from, to). An empty
// userIDs slice means the whole company.
func (r *Repository) CategorySummary(ctx context.Context, userIDs []int64, from, to time.Time) (domain.CategorySummary, error) {
	query := `SELECT category, COALESCE(SUM(duration_seconds), 0)
        FROM activity_logs
        WHERE start_time >= $1 AND start_time < $2`
	args := []interface{}{from, to}

	if len(userIDs) > 0 {
		query += ` AND user_id = ANY($3)`
		args = append(args, userIDs)
	}
	query += ` GROUP BY category`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return domain.CategorySummary{}, err
	}
	defer rows.Close()

	var summary domain.CategorySummary
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return domain.CategorySummary{}, err
		}
		switch domain.Category(category) {
		case domain.CategoryWork:
			summary.Work = total
		case domain.CategoryPrivate:
			summary.Private = total
		case domain.CategoryIdle:
			summary.Idle = total
		}
	}
	return summary, rows.Err()
}

// WorkDetails breaks down a user's Work time by retained detail text,
// largest first.
func (r *Repository) WorkDetails(ctx context.Context, userID int64, from, to time.Time) ([]domain.WorkDetail, error) {
	const query = `SELECT COALESCE(details, 'Unknown'), SUM(duration_seconds)
        FROM activity_logs
        WHERE user_id = $1 AND category = $2 AND start_time >= $3 AND start_time < $4
        GROUP BY details
        ORDER BY SUM(duration_seconds) DESC`

	rows, err := r.pool.Query(ctx, query, userID, domain.CategoryWork, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.WorkDetail, 0)
	for rows.Next() {
		var d domain.WorkDetail
		if err := rows.Scan(&d.App, &d.DurationSeconds); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func insertOutbox(ctx context.Context, tx pgx.Tx, aggregateType, aggregateID, eventType, partitionKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	dedupeKey := fmt.Sprintf("%s:%s", aggregateID, eventType)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		aggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		partitionKey,
		body,
		dedupeKey,
	)
	return err
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic string
}

var eventCatalog = map[string]EventMetadata{
	"activity.recorded": {Topic: "worktracker.activity_events"},
	"user.created":      {Topic: "worktracker.user_events"},
	"user.deleted":      {Topic: "worktracker.user_events"},
}
