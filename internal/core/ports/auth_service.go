package ports

import (
	"context"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/token"
)

// AuthResult is returned by a successful Authenticate call.
type AuthResult struct {
	UserID int64
	Login  string
	Role   domain.RoleName
	Token  string
	// IsFirstLogin is the pending-first-password flag as it was before this login.
	IsFirstLogin bool
}

// TokenVerifier validates session tokens.
type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

type AuthService interface {
	Authenticate(ctx context.Context, login, password string) (*AuthResult, error)
	VerifyToken(ctx context.Context, raw string) (*token.Claims, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	ResetPassword(ctx context.Context, login string) (string, error)
	IsFirstLogin(ctx context.Context, userID int64) (bool, error)
	UserRole(ctx context.Context, userID int64) (domain.RoleName, error)
}
