package domain

import "time"

// Category is the classification outcome for one activity sample.
type Category string

const (
	CategoryWork    Category = "Work"
	CategoryPrivate Category = "Private"
	CategoryIdle    Category = "Idle"
)

// Sample states reported by the daemon.
const (
	StateActive = "active"
	StateIdle   = "idle"
)

// RawSample is one reported interval of user activity from the daemon.
// App and Title are optional; DurationSeconds is zero when the daemon did
// not measure the interval itself.
type RawSample struct {
	Timestamp       time.Time
	State           string
	App             string
	Title           string
	DurationSeconds int
}

// Classification pairs a category with the retained detail text. Details is
// nil for every category except Work.
type Classification struct {
	Category Category
	Details  *string
}

// ActivityRecord is the canonical per-sample row stored in PostgreSQL.
// Records are written once at ingestion and never updated.
type ActivityRecord struct {
	ID              int64
	UserID          int64
	StartTime       time.Time
	DurationSeconds int
	Category        Category
	Details         *string
}

// User roles.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleCEO      = "ceo"
)

// User is an account in the directory. EmployeeID is the opaque identifier
// the daemon reports activity under, distinct from the numeric primary key.
type User struct {
	ID             int64
	EmployeeID     string
	FullName       *string
	Title          *string
	Email          string
	HashedPassword string
	Role           string
	ManagerID      *int64
}

// IsAdmin reports whether the user may manage accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleHR || u.Role == RoleCEO
}
