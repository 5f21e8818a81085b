package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/api/metrics"
	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditRecorder that persists events to repo.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditRecorder {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit event.
func (s *auditService) Record(ctx context.Context, event domain.AccessEvent) error {
	start := time.Now()
	if event.At.IsZero() {
		event.At = start.UTC()
	}

	if err := s.repo.Insert(ctx, &event); err != nil {
		metrics.AuditEventsTotal.WithLabelValues(string(event.Kind), "error").Inc()
		return fmt.Errorf("record audit event: %w", err)
	}

	metrics.AuditEventsTotal.WithLabelValues(string(event.Kind), "ok").Inc()
	metrics.AuditRecordDuration.Observe(time.Since(start).Seconds())

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("actor", event.Actor).
		Str("subject", event.Subject).
		Msg("audit event recorded")
	return nil
}
