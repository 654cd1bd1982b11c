package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique login", &pgconn.PgError{Code: "23505", ConstraintName: constraintLoginUnique}, domain.ErrDuplicateLogin},
		{"role fk", &pgconn.PgError{Code: "23503", ConstraintName: constraintRoleFK}, domain.ErrRoleNotFound},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, domain.ErrTransientStore},
		{"statement timeout", &pgconn.PgError{Code: "57014"}, domain.ErrTransientStore},
		{"connection class", &pgconn.PgError{Code: "08006"}, domain.ErrTransientStore},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), domain.ErrTransientStore},
		{"domain passthrough", domain.ErrUserNotFound, domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyLeavesOtherErrors(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "some_other_key"}
	got := classify(err)
	if errors.Is(got, domain.ErrDuplicateLogin) || errors.Is(got, domain.ErrTransientStore) {
		t.Errorf("unexpected mapping: %v", got)
	}
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}

func TestMigrateURL(t *testing.T) {
	tests := []struct{ in, want string }{
		{"postgres://u:p@h:5432/db?sslmode=disable", "pgx5://u:p@h:5432/db?sslmode=disable"},
		{"postgresql://u:p@h:5432/db?sslmode=disable", "pgx5://u:p@h:5432/db?sslmode=disable"},
		{"pgx5://u@h/db", "pgx5://u@h/db"},
	}
	for _, tt := range tests {
		if got := migrateURL(tt.in); got != tt.want {
			t.Errorf("migrateURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
