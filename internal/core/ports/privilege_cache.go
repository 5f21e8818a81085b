package ports

import (
	"context"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// PrivilegeSnapshot is the result of a cache lookup. Generation counts the
// invalidations of the entry and must be handed back to Set.
type PrivilegeSnapshot struct {
	Privileges domain.Privileges
	Hit        bool
	Generation int64
}

// PrivilegeCache holds resolver snapshots.
type PrivilegeCache interface {
	Get(ctx context.Context, email string) (PrivilegeSnapshot, error)
	// Set stores p only if no Invalidate ran since the Get that returned
	// generation. stored reports whether the write happened.
	Set(ctx context.Context, email string, p domain.Privileges, generation int64) (stored bool, err error)
	Invalidate(ctx context.Context, email string) error
}
