package ports

import (
	"context"
	"time"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// IdentityVerifier validates an identity provider assertion.
type IdentityVerifier interface {
	// Verify returns domain.ErrIdentityInvalid for any assertion that cannot be trusted.
	Verify(ctx context.Context, assertion string) (domain.Identity, error)
}

// TokenSigner issues session tokens for a subject.
type TokenSigner interface {
	Sign(subject string) (token string, expiresAt time.Time, err error)
}
