package ports

import (
	"context"
	"time"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// PremiumRepository persists per-profile premium requests. biodataID is unique.
type PremiumRepository interface {
	// Create reports an existing request for the profile as domain.ErrDuplicateRequest.
	Create(ctx context.Context, req *domain.PremiumRequest) error
	FindByBiodataID(ctx context.Context, biodataID int64) (*domain.PremiumRequest, error)
	// Approve marks the request approved and sets the profile premium flag
	// atomically: either both writes land or neither does.
	Approve(ctx context.Context, biodataID int64, at time.Time) (*domain.PremiumRequest, error)
	List(ctx context.Context, status domain.RequestStatus) ([]*domain.PremiumRequest, error)
	// CountPendingByOwner counts the owner's requests still awaiting approval.
	CountPendingByOwner(ctx context.Context, owner string) (int64, error)
}
