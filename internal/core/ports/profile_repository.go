package ports

import (
	"context"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// ProfileRepository reads biodata profiles owned by the external catalog.
type ProfileRepository interface {
	// FindByBiodataID returns domain.ErrProfileNotFound when absent.
	FindByBiodataID(ctx context.Context, biodataID int64) (*domain.Profile, error)
	FindByBiodataIDs(ctx context.Context, biodataIDs []int64) ([]*domain.Profile, error)
}
