package ports

import (
	"context"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

// UserRepository reads and writes user rows inside one transaction.
// FindByLogin and FindByID lock the returned row until the transaction ends.
type UserRepository interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByID reads the row without locking it.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) (int64, error)
	// Update writes the whole row.
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context) ([]*domain.User, error)
}

// RoleRepository reads role rows.
type RoleRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Role, error)
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
	List(ctx context.Context) ([]*domain.Role, error)
}

// Tx exposes the repositories bound to a single open transaction.
type Tx interface {
	Users() UserRepository
	Roles() RoleRepository
}

// Store is the persistence boundary. WithinTx commits when fn returns nil and
// rolls back everything fn wrote otherwise. Connection and timeout failures
// are reported as domain.ErrTransientStore.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// RoleCache memoises role rows, which never change while referenced.
// Get returns (nil, nil) on a miss.
type RoleCache interface {
	Get(ctx context.Context, id int64) (*domain.Role, error)
	Set(ctx context.Context, role *domain.Role) error
}
