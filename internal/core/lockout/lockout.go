// Package lockout decides whether an account may log in.
//
// All state lives on the user row: IsBlocked, FailedAttempts and LastLogin.
// Every transition below mutates the passed *domain.User in place; callers
// persist the row inside the same transaction that loaded it.
package lockout

import (
	"time"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

const (
	DefaultMaxFailedAttempts = 3
	DefaultInactivityWindow  = 30 * 24 * time.Hour
)

// State is the derived lockout state of an account.
type State string

const (
	StateActive                State = "active"
	StateBlockedInactivity     State = "blocked_inactivity"
	StateBlockedAttempts       State = "blocked_attempts"
	StateBlockedAdministrative State = "blocked_administrative"
)

// Policy holds the lockout thresholds.
type Policy struct {
	MaxFailedAttempts int
	InactivityWindow  time.Duration
}

// DefaultPolicy blocks after 3 failed attempts or 30 days without a login.
func DefaultPolicy() Policy {
	return Policy{
		MaxFailedAttempts: DefaultMaxFailedAttempts,
		InactivityWindow:  DefaultInactivityWindow,
	}
}

func (p Policy) normalized() Policy {
	if p.MaxFailedAttempts <= 0 {
		p.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if p.InactivityWindow <= 0 {
		p.InactivityWindow = DefaultInactivityWindow
	}
	return p
}

// State derives the lockout state from the row fields. The blocked reason is
// not stored, so it is inferred: counters first, then dormancy, otherwise the
// block was administrative.
func (p Policy) State(u *domain.User, now time.Time) State {
	p = p.normalized()
	if !u.IsBlocked {
		return StateActive
	}
	if u.FailedAttempts >= p.MaxFailedAttempts {
		return StateBlockedAttempts
	}
	if p.dormant(u, now) {
		return StateBlockedInactivity
	}
	return StateBlockedAdministrative
}

// EvaluateAttempt runs before credential verification. changed reports
// whether u was mutated and must be persisted even though err is non-nil.
func (p Policy) EvaluateAttempt(u *domain.User, now time.Time) (changed bool, err error) {
	p = p.normalized()
	if u.IsBlocked {
		return false, &domain.LockedError{Reason: domain.LockReasonBlocked}
	}
	if p.dormant(u, now) {
		u.IsBlocked = true
		return true, &domain.LockedError{Reason: domain.LockReasonInactivity}
	}
	return false, nil
}

// RecordFailure counts a wrong password. It always mutates u and returns
// either a *domain.LockedError once the threshold is reached or
// domain.ErrInvalidCredentials.
func (p Policy) RecordFailure(u *domain.User) error {
	p = p.normalized()
	u.FailedAttempts++
	if u.FailedAttempts >= p.MaxFailedAttempts {
		u.IsBlocked = true
		return &domain.LockedError{Reason: domain.LockReasonAttempts}
	}
	return domain.ErrInvalidCredentials
}

// RecordSuccess resets the counter and stamps LastLogin, unless the user
// still has to replace the initial password.
func (p Policy) RecordSuccess(u *domain.User, now time.Time) {
	u.FailedAttempts = 0
	if u.PendingFirstPassword() {
		return
	}
	t := now
	u.LastLogin = &t
}

// Unblock clears the block and the counter. It reports false, leaving u
// untouched, when the account was already active.
func Unblock(u *domain.User) bool {
	if !u.IsBlocked {
		return false
	}
	u.IsBlocked = false
	u.FailedAttempts = 0
	return true
}

// Block applies an administrative block regardless of counters.
func Block(u *domain.User) bool {
	if u.IsBlocked {
		return false
	}
	u.IsBlocked = true
	return true
}

func (p Policy) dormant(u *domain.User, now time.Time) bool {
	return u.LastLogin != nil && now.Sub(*u.LastLogin) >= p.InactivityWindow
}
