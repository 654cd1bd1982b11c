package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrDuplicateLogin       = errors.New("login already exists")
	ErrInvalidCredentials   = errors.New("invalid login or password")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrLocked               = errors.New("account is blocked")
	ErrTokenInvalid         = errors.New("token is invalid")
	ErrTokenExpired         = errors.New("token has expired")
	ErrTransientStore       = errors.New("store temporarily unavailable")
	ErrValidation           = errors.New("validation failed")
)

// LockReason says why an account refuses logins.
type LockReason string

const (
	LockReasonBlocked    LockReason = "blocked"
	LockReasonInactivity LockReason = "blocked: inactivity"
	LockReasonAttempts   LockReason = "blocked: attempts"
)

// LockedError is returned when the lockout engine rejects a login attempt.
type LockedError struct {
	Reason LockReason
}

func (e *LockedError) Error() string { return string(e.Reason) }

func (e *LockedError) Unwrap() error { return ErrLocked }

// ValidationError reports a rejected input field before any store access.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
