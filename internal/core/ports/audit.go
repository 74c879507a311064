package ports

import (
	"context"

	"github.com/webhub/admin-console/internal/core/domain"
)

// AuditRepository persists session events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.SessionEvent) error
}

// AuditSink accepts session events without blocking the caller.
type AuditSink interface {
	Record(event domain.SessionEvent)
}
