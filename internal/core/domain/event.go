package domain

import "time"

// AuthEventType classifies an audit trail entry.
type AuthEventType string

const (
	EventLogin          AuthEventType = "login"
	EventPasswordChange AuthEventType = "password_change"
	EventPasswordReset  AuthEventType = "password_reset"
	EventUserCreated    AuthEventType = "user_created"
	EventUserUpdated    AuthEventType = "user_updated"
	EventUserUnblocked  AuthEventType = "user_unblocked"
	EventUserBlocked    AuthEventType = "user_blocked"
)

// AuthEvent is a single audit record of an authentication or administration outcome.
type AuthEvent struct {
	ID      string
	Type    AuthEventType
	Login   string
	UserID  int64
	Success bool
	Reason  string
	At      time.Time
}
