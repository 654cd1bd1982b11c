package ports

import (
	"context"

	"github.com/hotelcontrol/staff-auth/internal/core/domain"
)

// AuditSink receives audit events. Implementations must not block the caller
// for long and must never fail the originating operation.
type AuditSink interface {
	Record(ctx context.Context, event domain.AuthEvent)
}

// AuditRepository persists audit events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
