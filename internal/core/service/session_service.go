package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/bandhan/matrimony-api/internal/api/metrics"
	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// SessionService exchanges verified identity assertions for session tokens.
type SessionService struct {
	verifier ports.IdentityVerifier
	accounts ports.AccountRepository
	signer   ports.TokenSigner
	audit    ports.AuditSink
	log      zerolog.Logger

	// first-time exchanges for the same subject share one storage round trip
	inflight singleflight.Group
}

func NewSessionService(
	verifier ports.IdentityVerifier,
	accounts ports.AccountRepository,
	signer ports.TokenSigner,
	audit ports.AuditSink,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		verifier: verifier,
		accounts: accounts,
		signer:   signer,
		audit:    audit,
		log:      log,
	}
}

// accountLookupTimeout bounds the shared get-or-create, which runs detached
// from any single caller's cancellation.
const accountLookupTimeout = 10 * time.Second

type accountLookup struct {
	account *domain.Account
	created bool
}

// Exchange verifies assertion, creates the account on first sight and
// issues a session token with the privileges held at issuance time.
func (s *SessionService) Exchange(ctx context.Context, assertion string) (*ports.SessionResult, error) {
	id, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		metrics.SessionExchangesTotal.WithLabelValues("identity_invalid").Inc()
		return nil, err
	}

	v, err, _ := s.inflight.Do(id.Email, func() (interface{}, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), accountLookupTimeout)
		defer cancel()

		acct, created, err := s.accounts.GetOrCreate(lookupCtx, domain.NewAccount(id, time.Now().UTC()))
		if err != nil {
			return nil, err
		}
		if created {
			s.audit.Enqueue(domain.AccessEvent{
				Kind:    domain.EventAccountCreated,
				Actor:   acct.Email,
				Subject: acct.Email,
				At:      acct.CreatedAt,
			})
		}
		return accountLookup{account: acct, created: created}, nil
	})
	if err != nil {
		metrics.SessionExchangesTotal.WithLabelValues("storage_error").Inc()
		s.log.Error().Err(err).Str("subject", id.Email).Msg("account lookup failed during session exchange")
		return nil, fmt.Errorf("session exchange: %w", err)
	}
	lookup := v.(accountLookup)
	acct := *lookup.account
	created := lookup.created

	if !created && (acct.DisplayName != id.DisplayName || acct.AvatarURL != id.AvatarURL) {
		if err := s.accounts.UpdateProfile(ctx, acct.Email, id.DisplayName, id.AvatarURL); err != nil {
			s.log.Warn().Err(err).Str("subject", acct.Email).Msg("failed to refresh display attributes")
		} else {
			acct.DisplayName, acct.AvatarURL = id.DisplayName, id.AvatarURL
		}
	}

	token, exp, err := s.signer.Sign(acct.Email)
	if err != nil {
		metrics.SessionExchangesTotal.WithLabelValues("sign_error").Inc()
		return nil, fmt.Errorf("session exchange: %w", err)
	}

	if created {
		metrics.SessionExchangesTotal.WithLabelValues("created").Inc()
	} else {
		metrics.SessionExchangesTotal.WithLabelValues("ok").Inc()
	}

	s.log.Info().Str("subject", acct.Email).Bool("created", created).Msg("session issued")

	return &ports.SessionResult{
		Token:      token,
		ExpiresAt:  exp,
		Account:    &acct,
		Privileges: acct.Privileges(),
		Created:    created,
	}, nil
}
