package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

func TestPremiumService_RequestAndApprove(t *testing.T) {
	f := newFixture()
	svc := f.premiumService()

	req, err := svc.Request(context.Background(), ownerEmail, 7)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Status != domain.StatusPending {
		t.Fatalf("expected pending, got %s", req.Status)
	}
	acct, _ := f.accounts.FindByEmail(context.Background(), ownerEmail)
	if acct.PremiumRequest != domain.PremiumRequestPending {
		t.Fatalf("expected account marker pending, got %s", acct.PremiumRequest)
	}

	approved, err := svc.Approve(context.Background(), adminEmail, 7)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != domain.StatusApproved || approved.ApprovedAt == nil {
		t.Fatalf("unexpected approved request: %+v", approved)
	}

	profile, _ := f.profiles.FindByBiodataID(context.Background(), 7)
	stored, _ := f.premiums.FindByBiodataID(context.Background(), 7)
	if !profile.Premium || stored.Status != domain.StatusApproved {
		t.Fatalf("expected profile premium and request approved together, got premium=%v status=%s", profile.Premium, stored.Status)
	}

	// Profile premium is independent from the owner's account premium.
	acct, _ = f.accounts.FindByEmail(context.Background(), ownerEmail)
	if acct.Premium {
		t.Fatalf("profile approval must not flip account premium")
	}
	if acct.PremiumRequest != domain.PremiumRequestNone {
		t.Fatalf("expected account marker cleared, got %s", acct.PremiumRequest)
	}
}

func TestPremiumService_MarkerStaysWhileAnotherProfileIsPending(t *testing.T) {
	f := newFixture()
	svc := f.premiumService()

	for _, id := range []int64{7, 42} {
		if _, err := svc.Request(context.Background(), ownerEmail, id); err != nil {
			t.Fatalf("request %d: %v", id, err)
		}
	}

	if _, err := svc.Approve(context.Background(), adminEmail, 7); err != nil {
		t.Fatalf("approve 7: %v", err)
	}
	acct, _ := f.accounts.FindByEmail(context.Background(), ownerEmail)
	if acct.PremiumRequest != domain.PremiumRequestPending {
		t.Fatalf("expected marker pending while profile 42 waits, got %s", acct.PremiumRequest)
	}

	if _, err := svc.Approve(context.Background(), adminEmail, 42); err != nil {
		t.Fatalf("approve 42: %v", err)
	}
	acct, _ = f.accounts.FindByEmail(context.Background(), ownerEmail)
	if acct.PremiumRequest != domain.PremiumRequestNone {
		t.Fatalf("expected marker cleared after the last approval, got %s", acct.PremiumRequest)
	}
}

func TestPremiumService_ApproveFailureLeavesBothUnchanged(t *testing.T) {
	f := newFixture()
	svc := f.premiumService()
	if _, err := svc.Request(context.Background(), ownerEmail, 7); err != nil {
		t.Fatalf("request: %v", err)
	}

	f.premiums.approveErr = domain.ErrStorageUnavailable
	if _, err := svc.Approve(context.Background(), adminEmail, 7); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}

	profile, _ := f.profiles.FindByBiodataID(context.Background(), 7)
	stored, _ := f.premiums.FindByBiodataID(context.Background(), 7)
	if profile.Premium || stored.Status != domain.StatusPending {
		t.Fatalf("partial update observed: premium=%v status=%s", profile.Premium, stored.Status)
	}
}

func TestPremiumService_Request_Rules(t *testing.T) {
	f := newFixture()
	svc := f.premiumService()

	if _, err := svc.Request(context.Background(), seekerR, 7); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if _, err := svc.Request(context.Background(), ownerEmail, 404); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if _, err := svc.Request(context.Background(), ownerEmail, 7); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Request(context.Background(), ownerEmail, 7); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest while pending, got %v", err)
	}

	_, _ = svc.Approve(context.Background(), adminEmail, 7)
	if _, err := svc.Request(context.Background(), ownerEmail, 7); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest once approved, got %v", err)
	}
}

func TestPremiumService_Approve_Rules(t *testing.T) {
	f := newFixture()
	svc := f.premiumService()

	if _, err := svc.Approve(context.Background(), adminEmail, 7); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}

	_, _ = svc.Request(context.Background(), ownerEmail, 7)
	if _, err := svc.Approve(context.Background(), ownerEmail, 7); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	first, err := svc.Approve(context.Background(), adminEmail, 7)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	second, err := svc.Approve(context.Background(), adminEmail, 7)
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if !second.ApprovedAt.Equal(*first.ApprovedAt) {
		t.Fatalf("re-approve changed approval time")
	}
}

func TestPremiumService_List(t *testing.T) {
	f := newFixture()
	svc := f.premiumService()
	_, _ = svc.Request(context.Background(), ownerEmail, 7)
	_, _ = svc.Request(context.Background(), ownerEmail, 42)
	_, _ = svc.Approve(context.Background(), adminEmail, 42)

	if _, err := svc.List(context.Background(), seekerR, ""); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	all, _ := svc.List(context.Background(), adminEmail, "")
	pending, _ := svc.List(context.Background(), adminEmail, domain.StatusPending)
	if len(all) != 2 || len(pending) != 1 || pending[0].BiodataID != 7 {
		t.Fatalf("unexpected listings: all=%d pending=%v", len(all), pending)
	}
}
