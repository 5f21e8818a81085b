package ports

import (
	"context"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// AccountRepository persists accounts keyed by email.
type AccountRepository interface {
	// FindByEmail returns domain.ErrAccountNotFound when no account exists.
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	// GetOrCreate returns the existing account for acct.Email, or inserts acct.
	// created reports whether this call inserted it. Implementations must
	// guarantee a single account per email under concurrent calls.
	GetOrCreate(ctx context.Context, acct *domain.Account) (stored *domain.Account, created bool, err error)
	// UpdateProfile refreshes display attributes only.
	UpdateProfile(ctx context.Context, email, displayName, avatarURL string) error
	SetRole(ctx context.Context, email string, role domain.Role) (*domain.Account, error)
	SetPremium(ctx context.Context, email string, premium bool) (*domain.Account, error)
	SetPremiumRequest(ctx context.Context, email string, status domain.PremiumRequestStatus) error
	List(ctx context.Context) ([]*domain.Account, error)
}
