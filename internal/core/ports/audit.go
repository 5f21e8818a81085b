package ports

import (
	"context"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// AuditSink accepts committed transitions for the audit trail. Enqueue must
// not block the calling workflow on persistence.
type AuditSink interface {
	Enqueue(event domain.AccessEvent)
}

// AuditRepository persists audit trail entries.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AccessEvent) error
}

// AuditRecorder processes one audit event end to end.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AccessEvent) error
}
