package ports

import (
	"context"
	"time"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// PaymentLedger records charges authorized and confirmed by the payment
// processor.
type PaymentLedger interface {
	Insert(ctx context.Context, p *domain.Payment) error
	// FindByRef returns domain.ErrPaymentRequired when the reference is unknown.
	FindByRef(ctx context.Context, ref string) (*domain.Payment, error)
	MarkConfirmed(ctx context.Context, ref string, at time.Time) (*domain.Payment, error)
	// Consume binds a confirmed, unconsumed charge made by payer to requestID
	// in a single conditional write. Any other state reports
	// domain.ErrPaymentRequired.
	Consume(ctx context.Context, ref, payer, requestID string, at time.Time) (*domain.Payment, error)
	// Release undoes Consume when the request it paid for was never stored.
	Release(ctx context.Context, ref, requestID string) error
}
