package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

func TestRoleResolver_ReadsAccount(t *testing.T) {
	r := NewRoleResolver(newStubAccountRepo(adminAccount(), standardAccount(seekerR)), nil, discardLogger)

	p, err := r.Resolve(context.Background(), adminEmail)
	if err != nil || !p.IsAdmin() {
		t.Fatalf("expected admin, got %+v %v", p, err)
	}
	p, err = r.Resolve(context.Background(), seekerR)
	if err != nil || p.IsAdmin() || p.Premium {
		t.Fatalf("expected standard, got %+v %v", p, err)
	}
}

func TestRoleResolver_StorageErrorIsNotDefaulted(t *testing.T) {
	repo := newStubAccountRepo(standardAccount(seekerR))
	repo.err = fmt.Errorf("find account: %w", domain.ErrStorageUnavailable)
	r := NewRoleResolver(repo, nil, discardLogger)

	if _, err := r.Resolve(context.Background(), seekerR); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if err := r.RequireAdmin(context.Background(), seekerR); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable from RequireAdmin, got %v", err)
	}
}

func TestRoleResolver_RequireAdmin(t *testing.T) {
	r := NewRoleResolver(newStubAccountRepo(adminAccount(), standardAccount(seekerR)), nil, discardLogger)

	if err := r.RequireAdmin(context.Background(), adminEmail); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
	if err := r.RequireAdmin(context.Background(), seekerR); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := r.RequireAdmin(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown subject, got %v", err)
	}
	if _, err := r.Resolve(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRoleResolver_CacheAndInvalidate(t *testing.T) {
	repo := newStubAccountRepo(standardAccount(seekerR))
	cache := newStubCache()
	r := NewRoleResolver(repo, cache, discardLogger)

	if _, err := r.Resolve(context.Background(), seekerR); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := cache.entries[seekerR]; !ok {
		t.Fatalf("expected snapshot cached")
	}

	// A write that bypasses invalidation stays invisible until the entry goes.
	_, _ = repo.SetRole(context.Background(), seekerR, domain.RoleAdmin)
	p, _ := r.Resolve(context.Background(), seekerR)
	if p.IsAdmin() {
		t.Fatalf("expected cached snapshot before invalidation")
	}

	r.Invalidate(context.Background(), seekerR)
	p, _ = r.Resolve(context.Background(), seekerR)
	if !p.IsAdmin() {
		t.Fatalf("expected fresh admin role after invalidation")
	}
}

func TestRoleResolver_CacheErrorFallsBackToStorage(t *testing.T) {
	cache := newStubCache()
	cache.getErr = errors.New("redis down")
	r := NewRoleResolver(newStubAccountRepo(adminAccount()), cache, discardLogger)

	p, err := r.Resolve(context.Background(), adminEmail)
	if err != nil || !p.IsAdmin() {
		t.Fatalf("expected storage fallback, got %+v %v", p, err)
	}
}

func TestRoleResolver_DemotionDuringReadIsNotCached(t *testing.T) {
	second := adminAccount()
	second.Email = "admin2@example.com"
	repo := newStubAccountRepo(adminAccount(), second)
	cache := newStubCache()
	r := NewRoleResolver(repo, cache, discardLogger)
	accounts := NewAccountService(repo, r, &recordingAudit{}, discardLogger)

	// The demotion lands after storage was read but before the snapshot is
	// written back.
	repo.afterFind = func(email string) {
		if email != second.Email {
			return
		}
		repo.afterFind = nil
		if _, err := accounts.SetRole(context.Background(), adminEmail, second.Email, domain.RoleStandard); err != nil {
			t.Errorf("demote: %v", err)
		}
	}

	if _, err := r.Resolve(context.Background(), second.Email); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := cache.entries[second.Email]; ok {
		t.Fatalf("snapshot read before the demotion must not be cached")
	}
	if err := r.RequireAdmin(context.Background(), second.Email); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected demoted account to be forbidden, got %v", err)
	}
	p, ok := cache.entries[second.Email]
	if !ok || p.IsAdmin() {
		t.Fatalf("expected fresh standard snapshot cached, got %+v (cached=%t)", p, ok)
	}
}

func TestRoleResolver_CacheReadErrorSkipsWriteBack(t *testing.T) {
	cache := newStubCache()
	cache.getErr = errors.New("redis down")
	r := NewRoleResolver(newStubAccountRepo(standardAccount(seekerR)), cache, discardLogger)

	if _, err := r.Resolve(context.Background(), seekerR); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(cache.entries) != 0 {
		t.Fatalf("snapshot without a known generation must not be cached")
	}
}
