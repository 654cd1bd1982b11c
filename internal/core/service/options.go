package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hotelcontrol/staff-auth/internal/core/credential"
	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

const (
	DefaultMinPasswordLength = 6
	maxLoginLength           = 50
)

// TempPasswordSource produces temporary credentials for password resets.
type TempPasswordSource interface {
	TempPassword() (string, error)
}

// Option customises AuthService and AdminService.
type Option func(*settings)

// settings holds the collaborators both services share.
type settings struct {
	store          ports.Store
	hasher         *credential.Hasher
	log            zerolog.Logger
	roleCache      ports.RoleCache
	audit          ports.AuditSink
	temp           TempPasswordSource
	minPasswordLen int
	now            func() time.Time
}

func WithRoleCache(c ports.RoleCache) Option {
	return func(s *settings) { s.roleCache = c }
}

func WithAuditSink(a ports.AuditSink) Option {
	return func(s *settings) { s.audit = a }
}

func WithTempPasswords(src TempPasswordSource) Option {
	return func(s *settings) { s.temp = src }
}

func WithMinPasswordLength(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.minPasswordLen = n
		}
	}
}

// WithClock overrides the wall clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

func newSettings(store ports.Store, hasher *credential.Hasher, log zerolog.Logger, opts []Option) settings {
	s := settings{
		store:          store,
		hasher:         hasher,
		log:            log,
		temp:           credential.RandomTempPassword{Length: 12},
		minPasswordLen: DefaultMinPasswordLength,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// roleByID consults the cache before the role table. Cache failures only
// cost a database read.
func (s *settings) roleByID(ctx context.Context, tx ports.Tx, id int64) (*domain.Role, error) {
	if s.roleCache != nil {
		role, err := s.roleCache.Get(ctx, id)
		if err != nil {
			s.log.Debug().Err(err).Int64("role_id", id).Msg("role cache read failed")
		} else if role != nil {
			return role, nil
		}
	}

	role, err := tx.Roles().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.roleCache != nil {
		if err := s.roleCache.Set(ctx, role); err != nil {
			s.log.Debug().Err(err).Int64("role_id", id).Msg("role cache write failed")
		}
	}
	return role, nil
}

func (s *settings) emit(ctx context.Context, typ domain.AuthEventType, login string, userID int64, outcome error) {
	if s.audit == nil {
		return
	}
	ev := domain.AuthEvent{
		ID:      uuid.NewString(),
		Type:    typ,
		Login:   login,
		UserID:  userID,
		Success: outcome == nil,
		At:      s.now().UTC(),
	}
	if outcome != nil {
		ev.Reason = outcome.Error()
	}
	s.audit.Record(ctx, ev)
}

func normalizeLogin(login string) (string, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return "", domain.NewValidationError("login", "is required")
	}
	if utf8.RuneCountInString(login) > maxLoginLength {
		return "", domain.NewValidationError("login", "must be at most 50 characters")
	}
	return login, nil
}

func (s *settings) validatePassword(field, password string) error {
	if utf8.RuneCountInString(password) < s.minPasswordLen {
		return &domain.ValidationError{Field: field, Msg: "is too short"}
	}
	if len(password) > credential.MaxPasswordBytes {
		return &domain.ValidationError{Field: field, Msg: "is too long"}
	}
	return nil
}

// isRejection reports whether err is an expected business outcome rather
// than an infrastructure failure.
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrLocked) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrRoleNotFound) ||
		errors.Is(err, domain.ErrDuplicateLogin) ||
		errors.Is(err, domain.ErrWrongCurrentPassword)
}
