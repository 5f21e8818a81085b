package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// AccountService exposes account reads and the administrator-only role and
// premium mutations.
type AccountService struct {
	accounts ports.AccountRepository
	roles    ports.RoleResolver
	audit    ports.AuditSink
	log      zerolog.Logger
}

func NewAccountService(accounts ports.AccountRepository, roles ports.RoleResolver, audit ports.AuditSink, log zerolog.Logger) *AccountService {
	return &AccountService{accounts: accounts, roles: roles, audit: audit, log: log}
}

// Get returns the account for email. Only the owner or an admin may read it.
func (s *AccountService) Get(ctx context.Context, viewer, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	if viewer != email {
		if err := s.roles.RequireAdmin(ctx, viewer); err != nil {
			return nil, err
		}
	}
	return s.accounts.FindByEmail(ctx, email)
}

// List returns every account. Admin only.
func (s *AccountService) List(ctx context.Context, admin string) ([]*domain.Account, error) {
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	return s.accounts.List(ctx)
}

// SetRole changes an account's role. Admins cannot demote themselves, which
// would otherwise allow the last admin to lock everyone out.
func (s *AccountService) SetRole(ctx context.Context, admin, email string, role domain.Role) (*domain.Account, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	if email == admin && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", domain.ErrInvalidTarget)
	}

	acct, err := s.accounts.SetRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	s.roles.Invalidate(ctx, email)

	s.audit.Enqueue(domain.AccessEvent{
		Kind:    domain.EventRoleChanged,
		Actor:   admin,
		Subject: email,
		Detail:  string(role),
		At:      time.Now().UTC(),
	})
	s.log.Info().Str("admin", admin).Str("subject", email).Str("role", string(role)).Msg("role changed")
	return acct, nil
}

// SetPremium flips the account-level premium flag. Admin only.
func (s *AccountService) SetPremium(ctx context.Context, admin, email string, premium bool) (*domain.Account, error) {
	if err := s.roles.RequireAdmin(ctx, admin); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)

	acct, err := s.accounts.SetPremium(ctx, email, premium)
	if err != nil {
		return nil, err
	}
	s.roles.Invalidate(ctx, email)

	s.audit.Enqueue(domain.AccessEvent{
		Kind:    domain.EventPremiumChanged,
		Actor:   admin,
		Subject: email,
		Detail:  fmt.Sprintf("premium=%t", premium),
		At:      time.Now().UTC(),
	})
	s.log.Info().Str("admin", admin).Str("subject", email).Bool("premium", premium).Msg("account premium changed")
	return acct, nil
}
