package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

const userColumns = `user_id, login, password_hash, role_id, is_blocked, failed_attempts, last_login`

// UserRepository reads and writes the users table.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u    domain.User
		last *time.Time
	)
	if err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.RoleID, &u.IsBlocked, &u.FailedAttempts, &last); err != nil {
		return nil, err
	}
	if last != nil {
		t := last.UTC()
		u.LastLogin = &t
	}
	return &u, nil
}

// FindByLogin returns the user and locks the row until the transaction ends.
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1 FOR UPDATE`
	u, err := scanUser(r.db.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by login: %w", err)
	}
	return u, nil
}

// FindByID returns the user and locks the row until the transaction ends.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1 FOR UPDATE`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// GetByID returns the user without taking a row lock.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Insert(ctx context.Context, u *domain.User) (int64, error) {
	query := `
		INSERT INTO users (login, password_hash, role_id, is_blocked, failed_attempts, last_login)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		u.Login, u.PasswordHash, u.RoleID, u.IsBlocked, u.FailedAttempts, u.LastLogin,
	).Scan(&id)
	if err != nil {
		return 0, classify(fmt.Errorf("insert user: %w", err))
	}
	u.ID = id
	return id, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET login = $2, password_hash = $3, role_id = $4,
			is_blocked = $5, failed_attempts = $6, last_login = $7
		WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query,
		u.ID, u.Login, u.PasswordHash, u.RoleID, u.IsBlocked, u.FailedAttempts, u.LastLogin,
	)
	if err != nil {
		return classify(fmt.Errorf("update user: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns all users ordered by id without locking.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
