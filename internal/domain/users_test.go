package domain

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (plainHasher) Verify(password, hashed string) bool { return hashed == "hash:"+password }

type stubUserRepo struct {
	byEmail   map[string]*User
	byID      map[int64]*User
	nextID    int64
	created   []User
	deleted   []int64
	passwords map[int64]string
	managers  []User
	reports   map[int64][]User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail:   make(map[string]*User),
		byID:      make(map[int64]*User),
		nextID:    1,
		passwords: make(map[int64]string),
		reports:   make(map[int64][]User),
	}
}

func (s *stubUserRepo) add(user User) *User {
	user.ID = s.nextID
	s.nextID++
	stored := user
	s.byEmail[user.Email] = &stored
	s.byID[user.ID] = &stored
	return &stored
}

func (s *stubUserRepo) UserByEmail(ctx context.Context, email string) (*User, error) {
	return s.byEmail[email], nil
}

func (s *stubUserRepo) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.byID[id], nil
}

func (s *stubUserRepo) CreateUser(ctx context.Context, user User) (*User, error) {
	s.created = append(s.created, user)
	return s.add(user), nil
}

func (s *stubUserRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUserRepo) UpdateUser(ctx context.Context, id int64, updates UserUpdate) (*User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	if updates.Role != nil {
		user.Role = *updates.Role
	}
	if updates.SetManagerID {
		user.ManagerID = updates.ManagerID
	}
	if updates.Title != nil {
		user.Title = updates.Title
	}
	return user, nil
}

func (s *stubUserRepo) DeleteUser(ctx context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	if user, ok := s.byID[id]; ok {
		delete(s.byEmail, user.Email)
		delete(s.byID, id)
	}
	return nil
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	s.passwords[id] = hashedPassword
	return nil
}

func (s *stubUserRepo) ListDirectReports(ctx context.Context, managerID int64) ([]User, error) {
	return s.reports[managerID], nil
}

func (s *stubUserRepo) ListManagers(ctx context.Context) ([]User, error) {
	return s.managers, nil
}

func TestAuthenticate(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(User{Email: "anna@corp.test", HashedPassword: "hash:s3cret", Role: RoleEmployee})
	service := NewUserService(repo, plainHasher{})

	user, err := service.Authenticate(context.Background(), "anna@corp.test", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "anna@corp.test", user.Email)

	_, err = service.Authenticate(context.Background(), "anna@corp.test", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(context.Background(), "ghost@corp.test", "s3cret")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateUserGeneratesEmployeeID(t *testing.T) {
	repo := newStubUserRepo()
	service := NewUserService(repo, plainHasher{})

	user, err := service.CreateUser(context.Background(), CreateUserInput{
		Email:    "bob@corp.test",
		Password: "hunter2",
		Role:     RoleEmployee,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.EmployeeID, "emp_"))
	require.Greater(t, len(user.EmployeeID), len("emp_"))
	require.Equal(t, "hash:hunter2", user.HashedPassword)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	repo.add(User{Email: "bob@corp.test"})
	service := NewUserService(repo, plainHasher{})

	_, err := service.CreateUser(context.Background(), CreateUserInput{
		Email:    "bob@corp.test",
		Password: "hunter2",
		Role:     RoleEmployee,
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.Empty(t, repo.created)
}

func TestUpdateUserMissing(t *testing.T) {
	service := NewUserService(newStubUserRepo(), plainHasher{})

	role := RoleManager
	_, err := service.UpdateUser(context.Background(), 99, UserUpdate{Role: &role})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUserMissing(t *testing.T) {
	repo := newStubUserRepo()
	service := NewUserService(repo, plainHasher{})

	err := service.DeleteUser(context.Background(), 99)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Empty(t, repo.deleted)
}

func TestChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(User{Email: "anna@corp.test", HashedPassword: "hash:old"})
	service := NewUserService(repo, plainHasher{})

	err := service.ChangePassword(context.Background(), user, "nope", "new")
	require.ErrorIs(t, err, ErrWrongPassword)
	require.Empty(t, repo.passwords)

	err = service.ChangePassword(context.Background(), user, "old", "new")
	require.NoError(t, err)
	require.Equal(t, "hash:new", repo.passwords[user.ID])
}

func TestResetPassword(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.add(User{Email: "anna@corp.test", HashedPassword: "hash:old"})
	service := NewUserService(repo, plainHasher{})

	require.ErrorIs(t, service.ResetPassword(context.Background(), 99, "new"), ErrUserNotFound)

	require.NoError(t, service.ResetPassword(context.Background(), user.ID, "new"))
	require.Equal(t, "hash:new", repo.passwords[user.ID])
}

func TestTeamsRoster(t *testing.T) {
	repo := newStubUserRepo()
	name := "Mia Manager"
	manager := repo.add(User{Email: "mia@corp.test", FullName: &name, Role: RoleManager})
	repo.managers = []User{*manager}
	repo.reports[manager.ID] = []User{
		{Email: "dev1@corp.test"},
		{Email: "dev2@corp.test"},
	}
	service := NewUserService(repo, plainHasher{})

	teams, err := service.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	require.Equal(t, manager.ID, teams[0].ManagerID)
	require.Equal(t, &name, teams[0].ManagerName)
	require.Equal(t, 2, teams[0].MemberCount)
	require.Equal(t, "dev1@corp.test", teams[0].Members[0].Email)
}
