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
	"github.com/bandhan/matrimony-api/internal/pkg/ids"
)

// PaymentSpender is the slice of the payment collaborator the disclosure
// workflow depends on. Each confirmed charge pays for one request.
type PaymentSpender interface {
	Consume(ctx context.Context, payer, ref, requestID string) error
	Release(ctx context.Context, ref, requestID string) error
}

// DisclosureService implements the contact disclosure workflow:
// NonExistent -> Pending -> Approved, with requester deletion from any state.
type DisclosureService struct {
	requests ports.DisclosureRepository
	profiles ports.ProfileRepository
	payments PaymentSpender
	roles    ports.RoleResolver
	audit    ports.AuditSink
	log      zerolog.Logger
	now      func() time.Time
}

func NewDisclosureService(
	requests ports.DisclosureRepository,
	profiles ports.ProfileRepository,
	payments PaymentSpender,
	roles ports.RoleResolver,
	audit ports.AuditSink,
	log zerolog.Logger,
) *DisclosureService {
	return &DisclosureService{
		requests: requests,
		profiles: profiles,
		payments: payments,
		roles:    roles,
		audit:    audit,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create records a pending disclosure request for (requester, biodataID).
// The payment reference is spent on the new request before the insert and
// handed back if the insert fails; a concurrent insert for the same pair
// loses on the storage uniqueness constraint.
func (s *DisclosureService) Create(ctx context.Context, requester string, biodataID int64, paymentRef string) (*domain.DisclosureRequest, error) {
	if requester == "" {
		return nil, domain.ErrUnauthenticated
	}

	profile, err := s.profiles.FindByBiodataID(ctx, biodataID)
	if err != nil {
		return nil, s.fail("create", err)
	}
	if profile.OwnerEmail == requester {
		return nil, s.fail("create", fmt.Errorf("%w: cannot request own contact details", domain.ErrInvalidTarget))
	}

	existing, err := s.requests.FindByPair(ctx, requester, biodataID)
	switch {
	case err == nil && existing != nil:
		return nil, s.fail("create", domain.ErrDuplicateRequest)
	case err != nil && !errors.Is(err, domain.ErrRequestNotFound):
		return nil, s.fail("create", err)
	}

	id := ids.New()
	if err := s.payments.Consume(ctx, requester, paymentRef, id); err != nil {
		return nil, s.fail("create", err)
	}

	req := &domain.DisclosureRequest{
		ID:             id,
		RequesterEmail: requester,
		BiodataID:      biodataID,
		PaymentRef:     paymentRef,
		Status:         domain.StatusPending,
		CreatedAt:      s.now(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if rerr := s.payments.Release(context.WithoutCancel(ctx), paymentRef, id); rerr != nil {
			s.log.Error().Err(rerr).Str("payment_ref", paymentRef).Str("request_id", id).Msg("failed to release payment after insert failure")
		}
		return nil, s.fail("create", err)
	}

	metrics.DisclosureTransitionsTotal.WithLabelValues("create", "ok").Inc()
	s.audit.Enqueue(domain.AccessEvent{
		Kind:      domain.EventDisclosureCreated,
		Actor:     requester,
		Subject:   requester,
		BiodataID: biodataID,
		RequestID: req.ID,
		Detail:    paymentRef,
		At:        req.CreatedAt,
	})
	s.log.Info().Str("request_id", req.ID).Str("requester", requester).Int64("biodata_id", biodataID).Msg("disclosure requested")
	return req, nil
}

// Approve moves a pending request to approved. Approving an approved
// request succeeds without touching its approval time.
func (s *DisclosureService) Approve(ctx context.Context, admin, requestID string) (*domain.DisclosureRequest, error) {
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, s.fail("approve", err)
	}

	before, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, s.fail("approve", err)
	}
	if before.Approved() {
		metrics.DisclosureTransitionsTotal.WithLabelValues("approve", "noop").Inc()
		return before, nil
	}

	req, err := s.requests.Approve(ctx, requestID, s.now())
	if err != nil {
		return nil, s.fail("approve", err)
	}

	metrics.DisclosureTransitionsTotal.WithLabelValues("approve", "ok").Inc()
	s.audit.Enqueue(domain.AccessEvent{
		Kind:      domain.EventDisclosureApproved,
		Actor:     admin,
		Subject:   req.RequesterEmail,
		BiodataID: req.BiodataID,
		RequestID: req.ID,
		At:        s.now(),
	})
	s.log.Info().Str("request_id", req.ID).Str("admin", admin).Msg("disclosure approved")
	return req, nil
}

// Delete removes a request in any state. Only its requester may do so, and
// the payment is not refunded.
func (s *DisclosureService) Delete(ctx context.Context, requester, requestID string) error {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return s.fail("delete", err)
	}
	if req.RequesterEmail != requester {
		return s.fail("delete", domain.ErrForbidden)
	}
	if err := s.requests.Delete(ctx, requestID); err != nil {
		return s.fail("delete", err)
	}

	metrics.DisclosureTransitionsTotal.WithLabelValues("delete", "ok").Inc()
	s.audit.Enqueue(domain.AccessEvent{
		Kind:      domain.EventDisclosureDeleted,
		Actor:     requester,
		Subject:   requester,
		BiodataID: req.BiodataID,
		RequestID: req.ID,
		Detail:    string(req.Status),
		At:        s.now(),
	})
	return nil
}

// ListMine returns the requester's own requests.
func (s *DisclosureService) ListMine(ctx context.Context, requester string) ([]*domain.DisclosureRequest, error) {
	if requester == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.requests.ListByRequester(ctx, requester)
}

// ListForAdmin returns all requests matching filter. Admin only.
func (s *DisclosureService) ListForAdmin(ctx context.Context, admin string, filter ports.DisclosureFilter) ([]*domain.DisclosureRequest, error) {
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.requests.List(ctx, filter)
}

func (s *DisclosureService) fail(action string, err error) error {
	metrics.DisclosureTransitionsTotal.WithLabelValues(action, domain.KindOf(err)).Inc()
	return fmt.Errorf("disclosure %s: %w", action, err)
}
