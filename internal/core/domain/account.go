package domain

import (
	"strings"
	"time"
)

// Role is the platform-wide privilege level of an account.
type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleAdmin
}

// PremiumRequestStatus tracks an account's own premium request marker.
type PremiumRequestStatus string

const (
	PremiumRequestNone    PremiumRequestStatus = "none"
	PremiumRequestPending PremiumRequestStatus = "pending"
)

// Identity is what a verified identity provider assertion tells us about a
// subject. It is never a source of role or premium truth.
type Identity struct {
	Email       string
	DisplayName string
	AvatarURL   string
}

// Account is the persisted record behind a subject identifier.
type Account struct {
	Email          string               `json:"email"`
	DisplayName    string               `json:"display_name"`
	AvatarURL      string               `json:"avatar_url,omitempty"`
	Role           Role                 `json:"role"`
	Premium        bool                 `json:"premium"`
	PremiumRequest PremiumRequestStatus `json:"premium_request"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewAccount builds the record created on a subject's first session exchange.
func NewAccount(id Identity, now time.Time) *Account {
	return &Account{
		Email:          id.Email,
		DisplayName:    id.DisplayName,
		AvatarURL:      id.AvatarURL,
		Role:           RoleStandard,
		Premium:        false,
		PremiumRequest: PremiumRequestNone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Privileges is the (role, premium) snapshot the resolver hands out.
type Privileges struct {
	Role    Role `json:"role"`
	Premium bool `json:"premium"`
}

// IsAdmin reports whether the snapshot carries the admin role.
func (p Privileges) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Privileges extracts the resolver snapshot from the account.
func (a *Account) Privileges() Privileges {
	return Privileges{Role: a.Role, Premium: a.Premium}
}

// NormalizeEmail canonicalises a subject identifier.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
