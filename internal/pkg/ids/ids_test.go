package ids

import (
	"strings"
	"testing"
)

func TestNew_UniqueAndOrdered(t *testing.T) {
	prev := New()
	seen := map[string]struct{}{prev: {}}
	for i := 0; i < 1000; i++ {
		id := New()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s", id)
		}
		if id <= prev {
			t.Fatalf("ids not monotonic: %s after %s", id, prev)
		}
		seen[id] = struct{}{}
		prev = id
	}
}

func TestNewPaymentRef(t *testing.T) {
	ref := NewPaymentRef()
	if !strings.HasPrefix(ref, "pay_") || len(ref) != len("pay_")+26 {
		t.Fatalf("unexpected ref %q", ref)
	}
	if ref != strings.ToLower(ref) {
		t.Fatalf("expected lower-case ref, got %q", ref)
	}
}
