package domain

import "errors"

var (
	// ErrUserNotFound is returned when an employee id or numeric id resolves to nothing.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when creating a user with an already registered email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on failed login.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrWrongPassword is returned when a self password change supplies the wrong current password.
	ErrWrongPassword = errors.New("incorrect current password")
	// ErrNotDirectReport is returned when a manager asks for someone outside their team.
	ErrNotDirectReport = errors.New("not a direct report")
)
