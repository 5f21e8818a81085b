package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
	"github.com/bandhan/matrimony-api/internal/pkg/ids"
)

// PaymentPrice is the server-side price of one contact disclosure request.
type PaymentPrice struct {
	AmountMinor int64
	Currency    string
}

// PaymentService records authorizations and confirmations reported by the
// payment processor and answers whether a reference is usable.
type PaymentService struct {
	ledger ports.PaymentLedger
	price  PaymentPrice
	audit  ports.AuditSink
	log    zerolog.Logger
}

func NewPaymentService(ledger ports.PaymentLedger, price PaymentPrice, audit ports.AuditSink, log zerolog.Logger) *PaymentService {
	return &PaymentService{ledger: ledger, price: price, audit: audit, log: log}
}

// Authorize opens a charge for payer at the configured price.
func (s *PaymentService) Authorize(ctx context.Context, payer string) (*domain.Payment, error) {
	if payer == "" {
		return nil, domain.ErrUnauthenticated
	}
	p := &domain.Payment{
		Ref:         ids.NewPaymentRef(),
		PayerEmail:  payer,
		AmountMinor: s.price.AmountMinor,
		Currency:    s.price.Currency,
		Status:      domain.PaymentAuthorized,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.ledger.Insert(ctx, p); err != nil {
		return nil, fmt.Errorf("authorize payment: %w", err)
	}
	s.log.Info().Str("payer", payer).Str("payment_ref", p.Ref).Msg("payment authorized")
	return p, nil
}

// Confirm marks ref confirmed. Confirming twice is harmless.
func (s *PaymentService) Confirm(ctx context.Context, payer, ref string) (*domain.Payment, error) {
	p, err := s.ledger.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.PayerEmail != payer {
		return nil, domain.ErrForbidden
	}
	if p.Status == domain.PaymentConfirmed {
		return p, nil
	}

	p, err = s.ledger.MarkConfirmed(ctx, ref, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("confirm payment: %w", err)
	}
	s.audit.Enqueue(domain.AccessEvent{
		Kind:      domain.EventPaymentConfirmed,
		Actor:     payer,
		Subject:   payer,
		RequestID: ref,
		At:        time.Now().UTC(),
	})
	return p, nil
}

// IsConfirmed reports whether ref is a confirmed charge made by payer that
// has not paid for a request yet. Unknown references are not an error, just
// unconfirmed.
func (s *PaymentService) IsConfirmed(ctx context.Context, payer, ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	p, err := s.ledger.FindByRef(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentRequired) {
			return false, nil
		}
		return false, err
	}
	return p.Spendable(payer), nil
}

// Consume spends ref on requestID. A missing, unconfirmed, foreign or already
// spent reference reports domain.ErrPaymentRequired.
func (s *PaymentService) Consume(ctx context.Context, payer, ref, requestID string) error {
	if ref == "" {
		return domain.ErrPaymentRequired
	}
	if _, err := s.ledger.Consume(ctx, ref, payer, requestID, time.Now().UTC()); err != nil {
		return fmt.Errorf("consume payment: %w", err)
	}
	return nil
}

// Release returns ref to the payer when the request it was spent on could
// not be stored.
func (s *PaymentService) Release(ctx context.Context, ref, requestID string) error {
	if err := s.ledger.Release(ctx, ref, requestID); err != nil {
		return fmt.Errorf("release payment: %w", err)
	}
	return nil
}
