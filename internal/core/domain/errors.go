package domain

import "errors"

// Error taxonomy shared by every workflow. Adapters wrap the underlying cause
// with %w so callers can still match with errors.Is.
var (
	ErrIdentityInvalid    = errors.New("identity assertion invalid")
	ErrUnauthenticated    = errors.New("session token missing or invalid")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrDuplicateRequest   = errors.New("request already exists")
	ErrInvalidTarget      = errors.New("invalid request target")
	ErrPaymentRequired    = errors.New("confirmed payment required")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidInput       = errors.New("invalid input")

	ErrAccountNotFound = errors.New("account not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrRequestNotFound = errors.New("request not found")
)

// Kind names returned by KindOf and rendered in API error envelopes.
const (
	KindIdentityInvalid    = "IdentityInvalid"
	KindUnauthenticated    = "Unauthenticated"
	KindStorageUnavailable = "StorageUnavailable"
	KindDuplicateRequest   = "DuplicateRequest"
	KindInvalidTarget      = "InvalidTarget"
	KindPaymentRequired    = "PaymentRequired"
	KindForbidden          = "Forbidden"
	KindInvalidInput       = "InvalidInput"
	KindNotFound           = "NotFound"
	KindInternal           = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrIdentityInvalid, KindIdentityInvalid},
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrStorageUnavailable, KindStorageUnavailable},
	{ErrDuplicateRequest, KindDuplicateRequest},
	{ErrInvalidTarget, KindInvalidTarget},
	{ErrPaymentRequired, KindPaymentRequired},
	{ErrForbidden, KindForbidden},
	{ErrInvalidInput, KindInvalidInput},
	{ErrAccountNotFound, KindNotFound},
	{ErrProfileNotFound, KindNotFound},
	{ErrRequestNotFound, KindNotFound},
}

// KindOf classifies err into one of the Kind* names. Errors outside the
// taxonomy are reported as KindInternal.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
