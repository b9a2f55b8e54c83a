// Package events defines the payloads published through the outbox.
package events

import "time"

// ActivityBatchRecorded is emitted after a daemon batch is persisted.
type ActivityBatchRecorded struct {
	BatchID        string    `json:"batch_id"`
	EmployeeID     string    `json:"employee_id"`
	UserID         int64     `json:"user_id"`
	RecordCount    int       `json:"record_count"`
	WorkSeconds    int64     `json:"work_seconds"`
	PrivateSeconds int64     `json:"private_seconds"`
	IdleSeconds    int64     `json:"idle_seconds"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// UserCreated is emitted when an admin provisions a new account.
type UserCreated struct {
	UserID     int64     `json:"user_id"`
	EmployeeID string    `json:"employee_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UserDeleted is emitted when an account is removed; downstream consumers
// should drop any retained data for the employee.
type UserDeleted struct {
	UserID     int64     `json:"user_id"`
	EmployeeID string    `json:"employee_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
