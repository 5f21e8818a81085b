package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

func newAccountSvc() (*AccountService, *stubAccountRepo, *stubCache) {
	repo := newStubAccountRepo(adminAccount(), standardAccount(seekerR), standardAccount(ownerEmail))
	cache := newStubCache()
	roles := NewRoleResolver(repo, cache, discardLogger)
	return NewAccountService(repo, roles, &recordingAudit{}, discardLogger), repo, cache
}

func TestAccountService_Get(t *testing.T) {
	svc, _, _ := newAccountSvc()

	if _, err := svc.Get(context.Background(), seekerR, seekerR); err != nil {
		t.Fatalf("self read: %v", err)
	}
	if _, err := svc.Get(context.Background(), seekerR, ownerEmail); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), adminEmail, "OWNER@example.com"); err != nil {
		t.Fatalf("admin read: %v", err)
	}
}

func TestAccountService_SetPremium_InvalidatesCache(t *testing.T) {
	svc, _, cache := newAccountSvc()
	roles := svc.roles

	before, _ := roles.Resolve(context.Background(), seekerR)
	if before.Premium {
		t.Fatalf("seeker starts non-premium")
	}

	acct, err := svc.SetPremium(context.Background(), adminEmail, seekerR, true)
	if err != nil {
		t.Fatalf("set premium: %v", err)
	}
	if !acct.Premium {
		t.Fatalf("expected premium account")
	}
	if len(cache.invalidated) == 0 || cache.invalidated[len(cache.invalidated)-1] != seekerR {
		t.Fatalf("expected cache invalidation for %s, got %v", seekerR, cache.invalidated)
	}

	after, _ := roles.Resolve(context.Background(), seekerR)
	if !after.Premium {
		t.Fatalf("premium change not visible after invalidation")
	}
}

func TestAccountService_SetRole(t *testing.T) {
	svc, repo, _ := newAccountSvc()

	if _, err := svc.SetRole(context.Background(), seekerR, ownerEmail, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := svc.SetRole(context.Background(), adminEmail, ownerEmail, "superuser"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.SetRole(context.Background(), adminEmail, adminEmail, domain.RoleStandard); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget for self-demotion, got %v", err)
	}
	if _, err := svc.SetRole(context.Background(), adminEmail, "ghost@example.com", domain.RoleAdmin); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	acct, err := svc.SetRole(context.Background(), adminEmail, ownerEmail, domain.RoleAdmin)
	if err != nil || acct.Role != domain.RoleAdmin {
		t.Fatalf("promote: %+v %v", acct, err)
	}
	stored, _ := repo.FindByEmail(context.Background(), ownerEmail)
	if stored.Role != domain.RoleAdmin {
		t.Fatalf("role not persisted")
	}
}

func TestAccountService_List(t *testing.T) {
	svc, _, _ := newAccountSvc()
	if _, err := svc.List(context.Background(), seekerR); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	all, err := svc.List(context.Background(), adminEmail)
	if err != nil || len(all) != 3 {
		t.Fatalf("unexpected list: %d %v", len(all), err)
	}
}
