package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
	"github.com/hotelcontrol/staff-auth/internal/core/ports"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements ports.Store on a pgx pool. Each WithinTx call runs in one
// READ COMMITTED transaction; user lookups take row locks with FOR UPDATE.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify(fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(pgTx{db: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// Ping reports whether the database answers a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

type pgTx struct {
	db DBTX
}

func (t pgTx) Users() ports.UserRepository { return NewUserRepository(t.db) }
func (t pgTx) Roles() ports.RoleRepository { return NewRoleRepository(t.db) }

// Constraint names from the migrations.
const (
	constraintLoginUnique = "users_login_key"
	constraintRoleFK      = "users_role_id_fkey"
)

// classify maps driver errors onto the domain taxonomy. Errors that already
// carry a domain sentinel pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505" && pgErr.ConstraintName == constraintLoginUnique:
			return fmt.Errorf("%w: %v", domain.ErrDuplicateLogin, err)
		case pgErr.Code == "23503" && pgErr.ConstraintName == constraintRoleFK:
			return fmt.Errorf("%w: %v", domain.ErrRoleNotFound, err)
		case isTransientCode(pgErr.Code):
			return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
		}
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	}
	return err
}

func isTransientCode(code string) bool {
	switch code {
	case "40001", // serialization_failure
		"40P01", // deadlock_detected
		"55P03", // lock_not_available
		"57014", // query_canceled (statement_timeout)
		"53300", // too_many_connections
		"57P01": // admin_shutdown
		return true
	}
	return len(code) == 5 && code[:2] == "08" // connection_exception class
}
