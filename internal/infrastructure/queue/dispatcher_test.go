package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

type recordingRecorder struct {
	mu     sync.Mutex
	events []domain.AccessEvent
	block  chan struct{}
}

func (r *recordingRecorder) Record(_ context.Context, e domain.AccessEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingRecorder) snapshot() []domain.AccessEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.AccessEvent(nil), r.events...)
}

func TestDispatcher_PreservesOrderPerSubject(t *testing.T) {
	rec := &recordingRecorder{}
	d := NewDispatcher(4, rec, zerolog.Nop())
	d.Start(context.Background())

	kinds := []domain.AccessEventKind{
		domain.EventAccountCreated,
		domain.EventRoleChanged,
		domain.EventPremiumChanged,
		domain.EventRoleChanged,
	}
	for _, k := range kinds {
		d.Enqueue(domain.AccessEvent{Kind: k, Subject: "r@example.com"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := rec.snapshot()
	if len(got) != len(kinds) {
		t.Fatalf("expected %d events, got %d", len(kinds), len(got))
	}
	for i, k := range kinds {
		if got[i].Kind != k {
			t.Fatalf("event %d: expected %s, got %s", i, k, got[i].Kind)
		}
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(8, &recordingRecorder{}, zerolog.Nop())
	first := d.shardIndex("owner@example.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("owner@example.com") != first {
			t.Fatalf("shard index changed")
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard index out of range: %d", first)
	}
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	rec := &recordingRecorder{block: make(chan struct{})}
	d := NewDispatcher(1, rec, zerolog.Nop())
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer*2; i++ {
			d.Enqueue(domain.AccessEvent{Kind: domain.EventRoleChanged, Subject: "r@example.com"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Enqueue blocked on a full queue")
	}
	close(rec.block)
}

func TestDispatcher_EnqueueAfterCloseIsDropped(t *testing.T) {
	rec := &recordingRecorder{}
	d := NewDispatcher(2, rec, zerolog.Nop())
	d.Start(context.Background())
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	d.Enqueue(domain.AccessEvent{Kind: domain.EventRoleChanged, Subject: "r@example.com"})
	if n := len(rec.snapshot()); n != 0 {
		t.Fatalf("expected no events after close, got %d", n)
	}
}

func TestNewDispatcher_DefaultWorkers(t *testing.T) {
	d := NewDispatcher(0, &recordingRecorder{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
