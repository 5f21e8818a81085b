package ports

import (
	"context"
	"time"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

// SessionResult is returned by a successful session exchange.
type SessionResult struct {
	Token      string
	ExpiresAt  time.Time
	Account    *domain.Account
	Privileges domain.Privileges
	// Created is true when this exchange created the account.
	Created bool
}

// SessionService exchanges identity provider assertions for session tokens.
type SessionService interface {
	Exchange(ctx context.Context, assertion string) (*SessionResult, error)
}

// RoleResolver re-derives privileges from persisted account state.
type RoleResolver interface {
	Resolve(ctx context.Context, subject string) (domain.Privileges, error)
	RequireAdmin(ctx context.Context, subject string) error
	Invalidate(ctx context.Context, subject string)
}

// AccountService covers reads of accounts and administrator mutations.
type AccountService interface {
	Get(ctx context.Context, viewer, email string) (*domain.Account, error)
	List(ctx context.Context, admin string) ([]*domain.Account, error)
	SetRole(ctx context.Context, admin, email string, role domain.Role) (*domain.Account, error)
	SetPremium(ctx context.Context, admin, email string, premium bool) (*domain.Account, error)
}

// PaymentService fronts the payment collaborator.
type PaymentService interface {
	Authorize(ctx context.Context, payer string) (*domain.Payment, error)
	Confirm(ctx context.Context, payer, ref string) (*domain.Payment, error)
	// IsConfirmed reports whether ref is a confirmed charge made by payer
	// that has not yet paid for a disclosure request.
	IsConfirmed(ctx context.Context, payer, ref string) (bool, error)
}

// DisclosureService drives the contact disclosure workflow.
type DisclosureService interface {
	Create(ctx context.Context, requester string, biodataID int64, paymentRef string) (*domain.DisclosureRequest, error)
	Approve(ctx context.Context, admin, requestID string) (*domain.DisclosureRequest, error)
	Delete(ctx context.Context, requester, requestID string) error
	ListMine(ctx context.Context, requester string) ([]*domain.DisclosureRequest, error)
	ListForAdmin(ctx context.Context, admin string, filter DisclosureFilter) ([]*domain.DisclosureRequest, error)
}

// PremiumService drives the per-profile premium upgrade workflow.
type PremiumService interface {
	Request(ctx context.Context, owner string, biodataID int64) (*domain.PremiumRequest, error)
	Approve(ctx context.Context, admin string, biodataID int64) (*domain.PremiumRequest, error)
	List(ctx context.Context, admin string, status domain.RequestStatus) ([]*domain.PremiumRequest, error)
}

// Visibility is one entry of a batch contact-visibility evaluation.
type Visibility struct {
	BiodataID int64
	Visible   bool
}

// ContactService applies the access policy before revealing contact fields.
type ContactService interface {
	Contact(ctx context.Context, viewer string, biodataID int64) (*domain.Contact, error)
	Visibility(ctx context.Context, viewer string, biodataIDs []int64) ([]Visibility, error)
}
