package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

type stubAuditRepo struct {
	inserted []*domain.AccessEvent
	err      error
}

func (r *stubAuditRepo) Insert(_ context.Context, e *domain.AccessEvent) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, e)
	return nil
}

func TestAuditService_Record(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, discardLogger)

	err := svc.Record(context.Background(), domain.AccessEvent{Kind: domain.EventRoleChanged, Actor: adminEmail, Subject: seekerR})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	if repo.inserted[0].At.IsZero() {
		t.Fatalf("expected timestamp to be filled in")
	}
}

func TestAuditService_Record_Error(t *testing.T) {
	repo := &stubAuditRepo{err: domain.ErrStorageUnavailable}
	svc := NewAuditService(repo, discardLogger)

	if err := svc.Record(context.Background(), domain.AccessEvent{Kind: domain.EventRoleChanged}); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}
