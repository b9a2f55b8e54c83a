package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PasswordHasher abstracts password hashing so the service can be tested
// without real bcrypt rounds.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) bool
}

// UserRepository captures persistence operations for accounts. Create and
// Delete record the matching directory event in the same transaction.
type UserRepository interface {
	UserByEmail(ctx context.Context, email string) (*User, error)
	UserByID(ctx context.Context, id int64) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	ListDirectReports(ctx context.Context, managerID int64) ([]User, error)
	ListManagers(ctx context.Context) ([]User, error)
}

// UserUpdate carries partial account updates; nil fields stay unchanged.
// SetManagerID marks ManagerID as intentionally provided, so a nil value
// clears the assignment instead of keeping the current manager.
type UserUpdate struct {
	Role         *string
	ManagerID    *int64
	SetManagerID bool
	Title        *string
}

// CreateUserInput is the admin-facing payload for provisioning an account.
type CreateUserInput struct {
	Email     string
	FullName  *string
	Title     *string
	Password  string
	Role      string
	ManagerID *int64
}

// TeamMember is one entry of a team roster.
type TeamMember struct {
	Name  *string
	Email string
}

// TeamDetail describes one manager's team.
type TeamDetail struct {
	ManagerID   int64
	ManagerName *string
	MemberCount int
	Members     []TeamMember
}

// UserService handles account lifecycle and credentials.
type UserService struct {
	repo   UserRepository
	hasher PasswordHasher
}

// NewUserService constructs a UserService.
func NewUserService(repo UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// Authenticate verifies email+password and returns the matching user.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Verify(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UserByEmail resolves a user by email, mapping absence to ErrUserNotFound.
func (s *UserService) UserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateUser provisions an account with a generated employee id.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*User, error) {
	existing, err := s.repo.UserByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		EmployeeID:     "emp_" + uuid.NewString(),
		FullName:       input.FullName,
		Title:          input.Title,
		Email:          input.Email,
		HashedPassword: hashed,
		Role:           input.Role,
		ManagerID:      input.ManagerID,
	}
	return s.repo.CreateUser(ctx, user)
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// UpdateUser applies a partial update to a user's role, manager, or title.
func (s *UserService) UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*User, error) {
	user, err := s.repo.UpdateUser(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteUser removes an account; the account's activity records cascade away
// with it.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.repo.DeleteUser(ctx, id)
}

// ResetPassword sets a new password for any account (admin operation).
func (s *UserService) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	user, err := s.repo.UserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hashed)
}

// ChangePassword lets a user rotate their own password after proving the
// current one.
func (s *UserService) ChangePassword(ctx context.Context, user *User, currentPassword, newPassword string) error {
	if !s.hasher.Verify(currentPassword, user.HashedPassword) {
		return ErrWrongPassword
	}
	hashed, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, user.ID, hashed)
}

// Teams lists every manager with their roster.
func (s *UserService) Teams(ctx context.Context) ([]TeamDetail, error) {
	managers, err := s.repo.ListManagers(ctx)
	if err != nil {
		return nil, err
	}

	teams := make([]TeamDetail, 0, len(managers))
	for _, manager := range managers {
		members, err := s.repo.ListDirectReports(ctx, manager.ID)
		if err != nil {
			return nil, err
		}
		roster := make([]TeamMember, 0, len(members))
		for _, m := range members {
			roster = append(roster, TeamMember{Name: m.FullName, Email: m.Email})
		}
		teams = append(teams, TeamDetail{
			ManagerID:   manager.ID,
			ManagerName: manager.FullName,
			MemberCount: len(members),
			Members:     roster,
		})
	}
	return teams, nil
}
