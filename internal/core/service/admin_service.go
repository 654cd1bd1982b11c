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
)

const (
	msgUserCreated    = "user created"
	msgUserUpdated    = "user updated"
	msgNoChanges      = "no changes"
	msgUserUnblocked  = "user unblocked"
	msgNotBlocked     = "user was not blocked"
	msgUserBlocked    = "user blocked"
	msgAlreadyBlocked = "user is already blocked"
)

// AdminService implements the user lifecycle operations of the administration panel.
type AdminService struct {
	settings
	policy lockout.Policy
}

func NewAdminService(
	store ports.Store,
	hasher *credential.Hasher,
	policy lockout.Policy,
	log zerolog.Logger,
	opts ...Option,
) *AdminService {
	return &AdminService{settings: newSettings(store, hasher, log, opts), policy: policy}
}

// CreateUser inserts an active account that still has to change its password.
func (s *AdminService) CreateUser(ctx context.Context, in ports.CreateUserInput) (int64, error) {
	login, err := normalizeLogin(in.Login)
	if err != nil {
		return 0, err
	}
	if err := s.validatePassword("password", in.Password); err != nil {
		return 0, err
	}
	if in.RoleID <= 0 {
		return 0, domain.NewValidationError("role_id", "is required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	var id int64
	err = s.store.WithinTx(ctx, func(tx ports.Tx) error {
		if err := ensureLoginFree(ctx, tx, login, 0); err != nil {
			return err
		}
		if _, err := tx.Roles().FindByID(ctx, in.RoleID); err != nil {
			return err
		}
		id, err = tx.Users().Insert(ctx, &domain.User{
			Login:        login,
			PasswordHash: hash,
			RoleID:       in.RoleID,
		})
		return err
	})
	s.emit(ctx, domain.EventUserCreated, login, id, err)
	if err != nil {
		return 0, s.fail("create user", err)
	}

	s.log.Info().Str("login", login).Int64("user_id", id).Int64("role_id", in.RoleID).Msg(msgUserCreated)
	return id, nil
}

// UpdateUser applies the supplied fields. All of them are validated before
// the row is written; unblocking also clears the failure counter.
func (s *AdminService) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (ports.Result, error) {
	var newLogin string
	if in.Login != nil {
		l, err := normalizeLogin(*in.Login)
		if err != nil {
			return ports.Result{}, err
		}
		newLogin = l
	}
	if in.RoleID != nil && *in.RoleID <= 0 {
		return ports.Result{}, domain.NewValidationError("role_id", "must be positive")
	}

	var (
		changed bool
		login   string
	)
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		changed = false
		user, err := tx.Users().FindByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		login = user.Login

		renaming := in.Login != nil && newLogin != user.Login
		if renaming {
			if err := ensureLoginFree(ctx, tx, newLogin, user.ID); err != nil {
				return err
			}
		}
		reassigning := in.RoleID != nil && *in.RoleID != user.RoleID
		if reassigning {
			if _, err := tx.Roles().FindByID(ctx, *in.RoleID); err != nil {
				return err
			}
		}

		if renaming {
			user.Login = newLogin
			changed = true
		}
		if reassigning {
			user.RoleID = *in.RoleID
			changed = true
		}
		if in.IsBlocked != nil {
			if *in.IsBlocked {
				changed = lockout.Block(user) || changed
			} else {
				changed = lockout.Unblock(user) || changed
			}
		}

		if !changed {
			return nil
		}
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		s.emit(ctx, domain.EventUserUpdated, login, in.UserID, err)
		return ports.Result{}, s.fail("update user", err)
	}
	if !changed {
		return ports.Result{Message: msgNoChanges}, nil
	}

	s.emit(ctx, domain.EventUserUpdated, login, in.UserID, nil)
	s.log.Info().Int64("user_id", in.UserID).Msg(msgUserUpdated)
	return ports.Result{Message: msgUserUpdated, Changed: true}, nil
}

// UnblockUser clears any block and the failure counter. It succeeds without
// changes when the account is already active.
func (s *AdminService) UnblockUser(ctx context.Context, userID int64) (ports.Result, error) {
	return s.toggleBlock(ctx, userID, domain.EventUserUnblocked, lockout.Unblock, msgUserUnblocked, msgNotBlocked)
}

// BlockUser applies an administrative block.
func (s *AdminService) BlockUser(ctx context.Context, userID int64) (ports.Result, error) {
	return s.toggleBlock(ctx, userID, domain.EventUserBlocked, lockout.Block, msgUserBlocked, msgAlreadyBlocked)
}

func (s *AdminService) toggleBlock(
	ctx context.Context,
	userID int64,
	typ domain.AuthEventType,
	apply func(*domain.User) bool,
	changedMsg, unchangedMsg string,
) (ports.Result, error) {
	var (
		changed bool
		login   string
	)
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		user, err := tx.Users().FindByID(ctx, userID)
		if err != nil {
			return err
		}
		login = user.Login
		changed = apply(user)
		if !changed {
			return nil
		}
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		s.emit(ctx, typ, login, userID, err)
		return ports.Result{}, s.fail(string(typ), err)
	}
	if !changed {
		return ports.Result{Message: unchangedMsg}, nil
	}

	s.emit(ctx, typ, login, userID, nil)
	s.log.Info().Int64("user_id", userID).Str("login", login).Msg(changedMsg)
	return ports.Result{Message: changedMsg, Changed: true}, nil
}

// ListUsers returns every account with its role name and derived lockout state.
func (s *AdminService) ListUsers(ctx context.Context) ([]ports.UserSummary, error) {
	var out []ports.UserSummary
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		users, err := tx.Users().List(ctx)
		if err != nil {
			return err
		}
		roles, err := tx.Roles().List(ctx)
		if err != nil {
			return err
		}
		names := make(map[int64]domain.RoleName, len(roles))
		for _, r := range roles {
			names[r.ID] = r.Name
		}

		now := s.now()
		out = make([]ports.UserSummary, 0, len(users))
		for _, u := range users {
			out = append(out, ports.UserSummary{
				ID:             u.ID,
				Login:          u.Login,
				RoleID:         u.RoleID,
				Role:           names[u.RoleID],
				IsBlocked:      u.IsBlocked,
				State:          string(s.policy.State(u, now)),
				FailedAttempts: u.FailedAttempts,
				LastLogin:      u.LastLogin,
				FirstLogin:     u.PendingFirstPassword(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("list users", err)
	}
	return out, nil
}

// ListRoles returns the selectable roles.
func (s *AdminService) ListRoles(ctx context.Context) ([]*domain.Role, error) {
	var roles []*domain.Role
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		var err error
		roles, err = tx.Roles().List(ctx)
		return err
	})
	if err != nil {
		return nil, s.fail("list roles", err)
	}
	return roles, nil
}

func (s *AdminService) fail(op string, err error) error {
	if !isRejection(err) {
		s.log.Error().Err(err).Str("op", op).Msg("administration failed")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ensureLoginFree fails with domain.ErrDuplicateLogin when login belongs to
// an account other than selfID.
func ensureLoginFree(ctx context.Context, tx ports.Tx, login string, selfID int64) error {
	existing, err := tx.Users().FindByLogin(ctx, login)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return domain.ErrDuplicateLogin
	}
	return nil
}

// EnsureAdministrator creates an Administrator account named login unless an
// account with that login already exists. It reports whether one was created.
func (s *AdminService) EnsureAdministrator(ctx context.Context, login, password string) (bool, error) {
	var roleID int64
	err := s.store.WithinTx(ctx, func(tx ports.Tx) error {
		role, err := tx.Roles().FindByName(ctx, domain.RoleAdministrator)
		if err != nil {
			return err
		}
		roleID = role.ID
		return nil
	})
	if err != nil {
		return false, s.fail("bootstrap administrator", err)
	}

	_, err = s.CreateUser(ctx, ports.CreateUserInput{Login: login, Password: password, RoleID: roleID})
	if errors.Is(err, domain.ErrDuplicateLogin) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
