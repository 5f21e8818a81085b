package ports

import (
	"context"
	"time"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// DisclosureFilter narrows admin listings. Zero values mean "any".
type DisclosureFilter struct {
	Status domain.RequestStatus
}

// DisclosureRepository persists contact disclosure requests. The pair
// (requester, biodataID) carries a uniqueness constraint.
type DisclosureRepository interface {
	// Create inserts a pending request. A uniqueness violation is reported as
	// domain.ErrDuplicateRequest.
	Create(ctx context.Context, req *domain.DisclosureRequest) error
	FindByID(ctx context.Context, id string) (*domain.DisclosureRequest, error)
	FindByPair(ctx context.Context, requester string, biodataID int64) (*domain.DisclosureRequest, error)
	// Approve moves a pending request to approved in a single mutation and
	// returns the stored record. An already approved record is returned
	// unchanged.
	Approve(ctx context.Context, id string, at time.Time) (*domain.DisclosureRequest, error)
	Delete(ctx context.Context, id string) error
	ListByRequester(ctx context.Context, requester string) ([]*domain.DisclosureRequest, error)
	// ListApprovedFor returns approved requests by requester for any of biodataIDs.
	ListApprovedFor(ctx context.Context, requester string, biodataIDs []int64) ([]*domain.DisclosureRequest, error)
	List(ctx context.Context, filter DisclosureFilter) ([]*domain.DisclosureRequest, error)
}
