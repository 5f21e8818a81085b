package domain

import "time"

// AccessEventKind names a committed control-plane transition.
type AccessEventKind string

const (
	EventAccountCreated     AccessEventKind = "account_created"
	EventRoleChanged        AccessEventKind = "role_changed"
	EventPremiumChanged     AccessEventKind = "premium_changed"
	EventDisclosureCreated  AccessEventKind = "disclosure_created"
	EventDisclosureApproved AccessEventKind = "disclosure_approved"
	EventDisclosureDeleted  AccessEventKind = "disclosure_deleted"
	EventPremiumRequested   AccessEventKind = "premium_requested"
	EventPremiumApproved    AccessEventKind = "premium_approved"
	EventPaymentConfirmed   AccessEventKind = "payment_confirmed"
)

// AccessEvent is one audit trail entry.
type AccessEvent struct {
	Kind      AccessEventKind
	Actor     string
	Subject   string
	BiodataID int64
	RequestID string
	Detail    string
	At        time.Time
}
