// Package ids generates sortable identifiers for stored records.
package ids

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a ULID string, lexicographically ordered by creation time.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewPaymentRef returns a payment reference in the form pay_<ulid>.
func NewPaymentRef() string {
	return "pay_" + strings.ToLower(New())
}
