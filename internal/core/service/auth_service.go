package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hotelcontrol/staff-auth/internal/core/credential"
	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/lockout"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
	"github.com/hotelcontrol/staff-auth/internal/core/token"
)

// AuthService implements login, token verification and password management.
//
// Unknown logins and wrong passwords both surface as
// domain.ErrInvalidCredentials so callers cannot probe for accounts.
type AuthService struct {
	settings
	tokens *token.Service
	policy lockout.Policy
}

func NewAuthService(
	store ports.Store,
	hasher *credential.Hasher,
	tokens *token.Service,
	policy lockout.Policy,
	log zerolog.Logger,
	opts ...Option,
) *AuthService {
	return &AuthService{
		settings: newSettings(store, hasher, log, opts),
		tokens:   tokens,
		policy:   policy,
	}
}

// Authenticate verifies login and password under the lockout policy and
// issues a session token. Every read and write happens in one transaction
// holding the user row lock; rejections that change the row (a new failure
// count, an inactivity or attempts block) are committed before returning.
func (s *AuthService) Authenticate(ctx context.Context, login, password string) (*ports.AuthResult, error) {
	login, err := normalizeLogin(login)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, domain.NewValidationError("password", "is required")
	}

	var (
		result    *ports.AuthResult
		rejection error
		userID    int64
	)
	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		result, rejection, userID = nil, nil, 0

		user, err := tx.Users().FindByLogin(ctx, login)
		if errors.Is(err, domain.ErrUserNotFound) {
			s.hasher.Burn(password)
			rejection = domain.ErrInvalidCredentials
			return nil
		}
		if err != nil {
			return err
		}
		userID = user.ID
		now := s.now()

		changed, lockErr := s.policy.EvaluateAttempt(user, now)
		if lockErr != nil {
			rejection = lockErr
			if changed {
				return tx.Users().Update(ctx, user)
			}
			return nil
		}

		if !s.hasher.Verify(password, user.PasswordHash) {
			rejection = s.policy.RecordFailure(user)
			return tx.Users().Update(ctx, user)
		}

		firstLogin := user.PendingFirstPassword()
		s.policy.RecordSuccess(user, now)
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}

		role, err := s.roleByID(ctx, tx, user.RoleID)
		if err != nil {
			return fmt.Errorf("load role: %w", err)
		}
		signed, err := s.tokens.Issue(user.ID, role.Name)
		if err != nil {
			return err
		}

		result = &ports.AuthResult{
			UserID:       user.ID,
			Login:        user.Login,
			Role:         role.Name,
			Token:        signed,
			IsFirstLogin: firstLogin,
		}
		return nil
	})
	if err != nil {
		s.log.Error().Err(err).Str("login", login).Msg("authentication aborted")
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	s.emit(ctx, domain.EventLogin, login, userID, rejection)

	if rejection != nil {
		var locked *domain.LockedError
		if errors.As(rejection, &locked) && locked.Reason != domain.LockReasonBlocked {
			s.log.Warn().Str("login", login).Str("reason", string(locked.Reason)).Msg("account locked")
		}
		return nil, rejection
	}

	s.log.Info().
		Str("login", login).
		Int64("user_id", result.UserID).
		Bool("first_login", result.IsFirstLogin).
		Msg("user authenticated")
	return result, nil
}

// VerifyToken decodes a session token. It does not consult the store.
func (s *AuthService) VerifyToken(_ context.Context, raw string) (*token.Claims, error) {
	return s.tokens.Verify(raw)
}

// ChangePassword replaces the password after checking the current one. The
// first change also stamps LastLogin, which ends the pending-first-password state.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	if currentPassword == "" {
		return domain.NewValidationError("current_password", "is required")
	}
	if err := s.validatePassword("new_password", newPassword); err != nil {
		return err
	}
	if newPassword == currentPassword {
		return domain.NewValidationError("new_password", "must differ from the current password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	var login string
	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		login = user.Login
		if !s.hasher.Verify(currentPassword, user.PasswordHash) {
			return domain.ErrWrongCurrentPassword
		}

		user.PasswordHash = hash
		if user.PendingFirstPassword() {
			now := s.now()
			user.LastLogin = &now
		}
		return tx.Users().Update(ctx, user)
	})
	s.emit(ctx, domain.EventPasswordChange, login, userID, err)
	if err != nil {
		if !isRejection(err) {
			s.log.Error().Err(err).Int64("user_id", userID).Msg("password change failed")
		}
		return fmt.Errorf("change password: %w", err)
	}

	s.log.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

// ResetPassword sets a temporary password, clears the block and the failure
// counter, and puts the account back into the pending-first-password state.
// The temporary password is returned to the caller once and never stored in
// clear.
func (s *AuthService) ResetPassword(ctx context.Context, login string) (string, error) {
	login, err := normalizeLogin(login)
	if err != nil {
		return "", err
	}

	temp, err := s.temp.TempPassword()
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}
	hash, err := s.hasher.Hash(temp)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}

	var userID int64
	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().FindByLogin(ctx, login)
		if err != nil {
			return err
		}
		userID = user.ID
		user.PasswordHash = hash
		user.FailedAttempts = 0
		user.IsBlocked = false
		user.LastLogin = nil
		return tx.Users().Update(ctx, user)
	})
	s.emit(ctx, domain.EventPasswordReset, login, userID, err)
	if err != nil {
		if !isRejection(err) {
			s.log.Error().Err(err).Str("login", login).Msg("password reset failed")
		}
		return "", fmt.Errorf("reset password: %w", err)
	}

	s.log.Info().Str("login", login).Int64("user_id", userID).Msg("password reset to temporary")
	return temp, nil
}

// IsFirstLogin reports whether the user has yet to replace the initial password.
func (s *AuthService) IsFirstLogin(ctx context.Context, userID int64) (bool, error) {
	var first bool
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		first = user.PendingFirstPassword()
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("first login check: %w", err)
	}
	return first, nil
}

// UserRole returns the role name of a user.
func (s *AuthService) UserRole(ctx context.Context, userID int64) (domain.RoleName, error) {
	var name domain.RoleName
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		role, err := s.roleByID(ctx, tx, user.RoleID)
		if err != nil {
			return err
		}
		name = role.Name
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("user role: %w", err)
	}
	return name, nil
}
