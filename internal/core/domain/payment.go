package domain

import "time"

type PaymentStatus string

const (
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentConfirmed  PaymentStatus = "confirmed"
)

// Payment is the ledger entry for a charge made through the payment processor.
type Payment struct {
	Ref         string        `json:"payment_ref"`
	PayerEmail  string        `json:"payer_email"`
	AmountMinor int64         `json:"amount_minor"`
	Currency    string        `json:"currency"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	ConfirmedAt *time.Time    `json:"confirmed_at,omitempty"`
	// ConsumedBy is the disclosure request the charge paid for. A charge pays
	// for exactly one request and is not released when that request is deleted.
	ConsumedBy  string        `json:"consumed_by,omitempty"`
	ConsumedAt  *time.Time    `json:"consumed_at,omitempty"`
}

// Spendable reports whether p is a confirmed, unconsumed charge made by payer.
func (p *Payment) Spendable(payer string) bool {
	return p.Status == PaymentConfirmed && p.PayerEmail == payer && p.ConsumedBy == ""
}
