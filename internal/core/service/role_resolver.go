package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/api/metrics"
	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// RoleResolver reads (role, premium) from the account record, optionally
// through a cache. Account mutations made through this process invalidate
// the cache entry after the write, and a storage read that raced such an
// invalidation is never written back. Writes made by anything else become
// visible within the cache TTL.
type RoleResolver struct {
	accounts ports.AccountRepository
	cache    ports.PrivilegeCache
	log      zerolog.Logger
}

// NewRoleResolver returns a resolver. cache may be nil.
func NewRoleResolver(accounts ports.AccountRepository, cache ports.PrivilegeCache, log zerolog.Logger) *RoleResolver {
	return &RoleResolver{accounts: accounts, cache: cache, log: log}
}

// Resolve returns the subject's current privileges.
func (r *RoleResolver) Resolve(ctx context.Context, subject string) (domain.Privileges, error) {
	if subject == "" {
		return domain.Privileges{}, domain.ErrUnauthenticated
	}

	// Without a generation from a successful read there is nothing safe to
	// compare against, so the snapshot is not written back.
	cacheable := false
	var snap ports.PrivilegeSnapshot
	if r.cache != nil {
		var err error
		snap, err = r.cache.Get(ctx, subject)
		switch {
		case err != nil:
			r.log.Warn().Err(err).Str("subject", subject).Msg("privilege cache read failed, reading storage")
		case snap.Hit:
			metrics.PrivilegeCacheTotal.WithLabelValues("hit").Inc()
			return snap.Privileges, nil
		default:
			metrics.PrivilegeCacheTotal.WithLabelValues("miss").Inc()
			cacheable = true
		}
	}

	acct, err := r.accounts.FindByEmail(ctx, subject)
	if err != nil {
		return domain.Privileges{}, fmt.Errorf("resolve privileges: %w", err)
	}
	p := acct.Privileges()

	if cacheable {
		stored, err := r.cache.Set(ctx, subject, p, snap.Generation)
		switch {
		case err != nil:
			r.log.Warn().Err(err).Str("subject", subject).Msg("privilege cache write failed")
		case !stored:
			r.log.Debug().Str("subject", subject).Msg("privilege snapshot superseded by invalidation, not cached")
		}
	}
	return p, nil
}

// RequireAdmin returns domain.ErrForbidden unless subject currently holds
// the admin role.
func (r *RoleResolver) RequireAdmin(ctx context.Context, subject string) error {
	p, err := r.Resolve(ctx, subject)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return domain.ErrForbidden
		}
		return err
	}
	if !p.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// Invalidate drops any cached snapshot for subject.
func (r *RoleResolver) Invalidate(ctx context.Context, subject string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, subject); err != nil {
		r.log.Error().Err(err).Str("subject", subject).Msg("privilege cache invalidation failed")
	}
}
