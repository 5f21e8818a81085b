package domain

import "time"

// RequestStatus is shared by the disclosure and premium workflows.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	return s == StatusPending || s == StatusApproved
}

// DisclosureRequest asks an administrator to reveal one profile's contact
// fields to one requester. (RequesterEmail, BiodataID) is unique.
type DisclosureRequest struct {
	ID             string        `json:"id"`
	RequesterEmail string        `json:"requester_email"`
	BiodataID      int64         `json:"biodata_id"`
	PaymentRef     string        `json:"payment_ref"`
	Status         RequestStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	ApprovedAt     *time.Time    `json:"approved_at,omitempty"`
}

// Approved reports whether the request has been approved.
func (r *DisclosureRequest) Approved() bool {
	return r != nil && r.Status == StatusApproved
}

// PremiumRequest asks an administrator to mark a profile premium.
type PremiumRequest struct {
	BiodataID   int64         `json:"biodata_id"`
	OwnerEmail  string        `json:"owner_email"`
	Status      RequestStatus `json:"status"`
	RequestedAt time.Time     `json:"requested_at"`
	ApprovedAt  *time.Time    `json:"approved_at,omitempty"`
}
