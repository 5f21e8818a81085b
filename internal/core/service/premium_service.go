package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/api/metrics"
	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// PremiumService implements the per-profile premium upgrade workflow.
// Approval sets the profile's premium flag, not the owner account's.
type PremiumService struct {
	requests ports.PremiumRepository
	profiles ports.ProfileRepository
	accounts ports.AccountRepository
	roles    ports.RoleResolver
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

func NewPremiumService(
	requests ports.PremiumRepository,
	profiles ports.ProfileRepository,
	accounts ports.AccountRepository,
	roles ports.RoleResolver,
	audit ports.AuditSink,
	log zerolog.Logger,
) *PremiumService {
	return &PremiumService{
		requests: requests,
		profiles: profiles,
		accounts: accounts,
		roles:    roles,
		audit:    audit,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Request files a premium request for a profile owned by owner.
func (s *PremiumService) Request(ctx context.Context, owner string, biodataID int64) (*domain.PremiumRequest, error) {
	if owner == "" {
		return nil, domain.ErrUnauthenticated
	}
	profile, err := s.profiles.FindByBiodataID(ctx, biodataID)
	if err != nil {
		return nil, s.fail("request", err)
	}
	if profile.OwnerEmail != owner {
		return nil, s.fail("request", domain.ErrForbidden)
	}
	if profile.Premium {
		return nil, s.fail("request", fmt.Errorf("%w: profile is already premium", domain.ErrDuplicateRequest))
	}

	req := &domain.PremiumRequest{
		BiodataID:   biodataID,
		OwnerEmail:  owner,
		Status:      domain.StatusPending,
		RequestedAt: s.now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, s.fail("request", err)
	}

	if err := s.accounts.SetPremiumRequest(ctx, owner, domain.PremiumRequestPending); err != nil {
		s.log.Warn().Err(err).Str("owner", owner).Msg("failed to mark account premium request pending")
	}

	metrics.PremiumTransitionsTotal.WithLabelValues("request", "ok").Inc()
	s.audit.Enqueue(domain.AccessEvent{
		Kind:      domain.EventPremiumRequested,
		Actor:     owner,
		Subject:   owner,
		BiodataID: biodataID,
		At:        req.RequestedAt,
	})
	return req, nil
}

// Approve marks the request approved and the profile premium in one atomic
// storage operation. Re-approval is a successful no-op.
func (s *PremiumService) Approve(ctx context.Context, admin string, biodataID int64) (*domain.PremiumRequest, error) {
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, s.fail("approve", err)
	}

	before, err := s.requests.FindByBiodataID(ctx, biodataID)
	if err != nil {
		return nil, s.fail("approve", err)
	}
	if before.Status == domain.StatusApproved {
		metrics.PremiumTransitionsTotal.WithLabelValues("approve", "noop").Inc()
		return before, nil
	}

	req, err := s.requests.Approve(ctx, biodataID, s.now())
	if err != nil {
		return nil, s.fail("approve", err)
	}

	s.clearPremiumMarker(ctx, req.OwnerEmail)

	metrics.PremiumTransitionsTotal.WithLabelValues("approve", "ok").Inc()
	s.audit.Enqueue(domain.AccessEvent{
		Kind:      domain.EventPremiumApproved,
		Actor:     admin,
		Subject:   req.OwnerEmail,
		BiodataID: biodataID,
		At:        s.now(),
	})
	s.log.Info().Int64("biodata_id", biodataID).Str("admin", admin).Msg("profile premium approved")
	return req, nil
}

// List returns premium requests, optionally filtered by status. Admin only.
func (s *PremiumService) List(ctx context.Context, admin string, status domain.RequestStatus) ([]*domain.PremiumRequest, error) {
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, status)
	}
	return s.requests.List(ctx, status)
}

// clearPremiumMarker resets the owner's account marker once none of their
// profiles has a premium request waiting.
func (s *PremiumService) clearPremiumMarker(ctx context.Context, owner string) {
	pending, err := s.requests.CountPendingByOwner(ctx, owner)
	if err != nil {
		s.log.Warn().Err(err).Str("owner", owner).Msg("failed to count pending premium requests")
		return
	}
	if pending > 0 {
		return
	}
	if err := s.accounts.SetPremiumRequest(ctx, owner, domain.PremiumRequestNone); err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		s.log.Warn().Err(err).Str("owner", owner).Msg("failed to clear account premium request marker")
	}
}

func (s *PremiumService) fail(action string, err error) error {
	metrics.PremiumTransitionsTotal.WithLabelValues(action, domain.KindOf(err)).Inc()
	return fmt.Errorf("premium %s: %w", action, err)
}
