package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

const roleColumns = `role_id, role_name::text, COALESCE(description, ''), COALESCE(permissions, '')`

// RoleRepository reads the role table.
type RoleRepository struct {
	db DBTX
}

func NewRoleRepository(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var (
		r    domain.Role
		name string
	)
	if err := row.Scan(&r.ID, &name, &r.Description, &r.Permissions); err != nil {
		return nil, err
	}
	r.Name = domain.RoleName(name)
	return &r, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id int64) (*domain.Role, error) {
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM role WHERE role_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role by id: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	if !name.Valid() {
		return nil, domain.ErrRoleNotFound
	}
	role, err := scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM role WHERE role_name = $1::user_role_enum`, string(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role by name: %w", err)
	}
	return role, nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM role ORDER BY role_id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var roles []*domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}
