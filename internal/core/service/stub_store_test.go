package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

// stubStore is an in-memory ports.Store. A single mutex stands in for row
// locks; writes go to a private copy that is only published on commit.
type stubStore struct {
	mu        sync.Mutex
	users     map[int64]*domain.User
	roles     map[int64]*domain.Role
	nextID    int64
	commitErr   error
	txCount     int
	lockedReads int
}

func newStubStore() *stubStore {
	s := &stubStore{
		users:  make(map[int64]*domain.User),
		roles:  make(map[int64]*domain.Role),
		nextID: 1,
	}
	for i, name := range []domain.RoleName{domain.RoleAdministrator, domain.RoleManager, domain.RoleStaff, domain.RoleGuest} {
		id := int64(i + 1)
		s.roles[id] = &domain.Role{ID: id, Name: name}
	}
	return s
}

func (s *stubStore) roleID(name domain.RoleName) int64 {
	for id, r := range s.roles {
		if r.Name == name {
			return id
		}
	}
	return 0
}

// user returns a snapshot of the committed row.
func (s *stubStore) user(login string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Login == login {
			return u.Clone()
		}
	}
	return nil
}

func (s *stubStore) put(u *domain.User) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u = u.Clone()
	u.ID = s.nextID
	s.nextID++
	s.users[u.ID] = u
	return u.Clone()
}

func (s *stubStore) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	tx := &stubTx{store: s, users: make(map[int64]*domain.User, len(s.users)), nextID: s.nextID}
	for id, u := range s.users {
		tx.users[id] = u.Clone()
	}

	if err := fn(tx); err != nil {
		return err
	}
	if s.commitErr != nil {
		return s.commitErr
	}
	s.users = tx.users
	s.nextID = tx.nextID
	return nil
}

type stubTx struct {
	store  *stubStore
	users  map[int64]*domain.User
	nextID int64
}

func (t *stubTx) Users() ports.UserRepository { return stubUsers{t} }
func (t *stubTx) Roles() ports.RoleRepository { return stubRoles{t.store} }

type stubUsers struct{ tx *stubTx }

func (r stubUsers) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.tx.store.lockedReads++
	for _, u := range r.tx.users {
		if u.Login == login {
			return u.Clone(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUsers) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.tx.store.lockedReads++
	return r.GetByID(ctx, id)
}

func (r stubUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.tx.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r stubUsers) Insert(_ context.Context, user *domain.User) (int64, error) {
	for _, u := range r.tx.users {
		if u.Login == user.Login {
			return 0, domain.ErrDuplicateLogin
		}
	}
	if _, ok := r.tx.store.roles[user.RoleID]; !ok {
		return 0, domain.ErrRoleNotFound
	}
	c := user.Clone()
	c.ID = r.tx.nextID
	r.tx.nextID++
	r.tx.users[c.ID] = c
	return c.ID, nil
}

func (r stubUsers) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.tx.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range r.tx.users {
		if u.ID != user.ID && u.Login == user.Login {
			return domain.ErrDuplicateLogin
		}
	}
	r.tx.users[user.ID] = user.Clone()
	return nil
}

func (r stubUsers) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(r.tx.users))
	for _, u := range r.tx.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubRoles struct{ store *stubStore }

func (r stubRoles) FindByID(_ context.Context, id int64) (*domain.Role, error) {
	role, ok := r.store.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	c := *role
	return &c, nil
}

func (r stubRoles) FindByName(_ context.Context, name domain.RoleName) (*domain.Role, error) {
	for _, role := range r.store.roles {
		if role.Name == name {
			c := *role
			return &c, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r stubRoles) List(_ context.Context) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(r.store.roles))
	for _, role := range r.store.roles {
		c := *role
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *stubAudit) Record(_ context.Context, ev domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *stubAudit) last() domain.AuthEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.events[len(a.events)-1]
}

type stubRoleCache struct {
	roles  map[int64]*domain.Role
	getErr error
	hits   int
}

func (c *stubRoleCache) Get(_ context.Context, id int64) (*domain.Role, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	r, ok := c.roles[id]
	if !ok {
		return nil, nil
	}
	c.hits++
	return r, nil
}

func (c *stubRoleCache) Set(_ context.Context, role *domain.Role) error {
	c.roles[role.ID] = role
	return nil
}

var errStoreDown = errors.New("connection reset")
