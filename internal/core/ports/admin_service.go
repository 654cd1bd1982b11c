package ports

import (
	"context"
	"time"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

// Result is the outcome of an administrative mutation. Changed is false for
// calls that succeeded without touching the row.
type Result struct {
	Message string
	Changed bool
}

type CreateUserInput struct {
	Login    string
	Password string
	RoleID   int64
}

// UpdateUserInput carries optional changes; nil fields are left as they are.
type UpdateUserInput struct {
	UserID    int64
	Login     *string
	RoleID    *int64
	IsBlocked *bool
}

// UserSummary is one row of the user management listing.
type UserSummary struct {
	ID             int64
	Login          string
	RoleID         int64
	Role           domain.RoleName
	IsBlocked      bool
	State          string
	FailedAttempts int
	LastLogin      *time.Time
	FirstLogin     bool
}

type AdminService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (int64, error)
	UpdateUser(ctx context.Context, input UpdateUserInput) (Result, error)
	UnblockUser(ctx context.Context, userID int64) (Result, error)
	BlockUser(ctx context.Context, userID int64) (Result, error)
	ListUsers(ctx context.Context) ([]UserSummary, error)
	ListRoles(ctx context.Context) ([]*domain.Role, error)
}
