package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bandhan/matrimony-api/internal/core/domain"
	"github.com/bandhan/matrimony-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. Each mirrors the uniqueness and atomicity
// guarantees of the Mongo implementation.
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	inserts  int
	err      error // if set, every call returns this error

	// afterFind runs once FindByEmail has read the record and released the lock.
	afterFind func(email string)
}

func newStubAccountRepo(seed ...*domain.Account) *stubAccountRepo {
	r := &stubAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, a := range seed {
		clone := *a
		r.accounts[a.Email] = &clone
	}
	return r
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.Lock()
	if r.err != nil {
		r.mu.Unlock()
		return nil, r.err
	}
	a, ok := r.accounts[email]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	hook := r.afterFind
	r.mu.Unlock()

	if hook != nil {
		hook(email)
	}
	return &clone, nil
}

func (r *stubAccountRepo) GetOrCreate(ctx context.Context, acct *domain.Account) (*domain.Account, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, false, r.err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("get or create account: %w: %w", domain.ErrStorageUnavailable, err)
	}
	if a, ok := r.accounts[acct.Email]; ok {
		clone := *a
		return &clone, false, nil
	}
	clone := *acct
	r.accounts[acct.Email] = &clone
	r.inserts++
	out := clone
	return &out, true, nil
}

func (r *stubAccountRepo) UpdateProfile(_ context.Context, email, displayName, avatarURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[email]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.DisplayName, a.AvatarURL = displayName, avatarURL
	return nil
}

func (r *stubAccountRepo) SetRole(_ context.Context, email string, role domain.Role) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Role = role
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) SetPremium(_ context.Context, email string, premium bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	a.Premium = premium
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) SetPremiumRequest(_ context.Context, email string, status domain.PremiumRequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[email]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PremiumRequest = status
	return nil
}

func (r *stubAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		clone := *a
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type stubProfileRepo struct {
	mu       sync.Mutex
	profiles map[int64]*domain.Profile
}

func newStubProfileRepo(seed ...domain.Profile) *stubProfileRepo {
	r := &stubProfileRepo{profiles: make(map[int64]*domain.Profile)}
	for i := range seed {
		p := seed[i]
		r.profiles[p.BiodataID] = &p
	}
	return r
}

func (r *stubProfileRepo) FindByBiodataID(_ context.Context, id int64) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProfileRepo) FindByBiodataIDs(_ context.Context, ids []int64) ([]*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Profile
	for _, id := range ids {
		if p, ok := r.profiles[id]; ok {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubDisclosureRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.DisclosureRequest
	createFn func() error // optional hook run inside Create before the uniqueness check
}

func newStubDisclosureRepo() *stubDisclosureRepo {
	return &stubDisclosureRepo{byID: make(map[string]*domain.DisclosureRequest)}
}

func (r *stubDisclosureRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *stubDisclosureRepo) Create(_ context.Context, req *domain.DisclosureRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createFn != nil {
		if err := r.createFn(); err != nil {
			return err
		}
	}
	for _, existing := range r.byID {
		if existing.RequesterEmail == req.RequesterEmail && existing.BiodataID == req.BiodataID {
			return domain.ErrDuplicateRequest
		}
	}
	clone := *req
	r.byID[req.ID] = &clone
	return nil
}

func (r *stubDisclosureRepo) FindByID(_ context.Context, id string) (*domain.DisclosureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubDisclosureRepo) FindByPair(_ context.Context, requester string, biodataID int64) (*domain.DisclosureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.byID {
		if req.RequesterEmail == requester && req.BiodataID == biodataID {
			clone := *req
			return &clone, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *stubDisclosureRepo) Approve(_ context.Context, id string, at time.Time) (*domain.DisclosureRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if req.Status != domain.StatusApproved {
		req.Status = domain.StatusApproved
		stamp := at
		req.ApprovedAt = &stamp
	}
	clone := *req
	return &clone, nil
}

func (r *stubDisclosureRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrRequestNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubDisclosureRepo) ListByRequester(_ context.Context, requester string) ([]*domain.DisclosureRequest, error) {
	return r.filter(func(req *domain.DisclosureRequest) bool { return req.RequesterEmail == requester }), nil
}

func (r *stubDisclosureRepo) ListApprovedFor(_ context.Context, requester string, ids []int64) ([]*domain.DisclosureRequest, error) {
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(req *domain.DisclosureRequest) bool {
		return req.RequesterEmail == requester && want[req.BiodataID] && req.Status == domain.StatusApproved
	}), nil
}

func (r *stubDisclosureRepo) List(_ context.Context, f ports.DisclosureFilter) ([]*domain.DisclosureRequest, error) {
	return r.filter(func(req *domain.DisclosureRequest) bool { return f.Status == "" || req.Status == f.Status }), nil
}

func (r *stubDisclosureRepo) filter(keep func(*domain.DisclosureRequest) bool) []*domain.DisclosureRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.DisclosureRequest
	for _, req := range r.byID {
		if keep(req) {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// stubPremiumRepo shares the profile stub so Approve can flip both records
// under one lock, like the Mongo transaction.
type stubPremiumRepo struct {
	mu         sync.Mutex
	byBiodata  map[int64]*domain.PremiumRequest
	profiles   *stubProfileRepo
	approveErr error // if set, Approve fails without writing anything
}

func newStubPremiumRepo(profiles *stubProfileRepo) *stubPremiumRepo {
	return &stubPremiumRepo{byBiodata: make(map[int64]*domain.PremiumRequest), profiles: profiles}
}

func (r *stubPremiumRepo) Create(_ context.Context, req *domain.PremiumRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byBiodata[req.BiodataID]; exists {
		return domain.ErrDuplicateRequest
	}
	clone := *req
	r.byBiodata[req.BiodataID] = &clone
	return nil
}

func (r *stubPremiumRepo) FindByBiodataID(_ context.Context, id int64) (*domain.PremiumRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byBiodata[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubPremiumRepo) Approve(_ context.Context, id int64, at time.Time) (*domain.PremiumRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles.mu.Lock()
	defer r.profiles.mu.Unlock()

	if r.approveErr != nil {
		return nil, r.approveErr
	}
	req, ok := r.byBiodata[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	profile, ok := r.profiles.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if req.Status != domain.StatusApproved {
		profile.Premium = true
		req.Status = domain.StatusApproved
		stamp := at
		req.ApprovedAt = &stamp
	}
	clone := *req
	return &clone, nil
}

func (r *stubPremiumRepo) List(_ context.Context, status domain.RequestStatus) ([]*domain.PremiumRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PremiumRequest
	for _, req := range r.byBiodata {
		if status == "" || req.Status == status {
			clone := *req
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BiodataID < out[j].BiodataID })
	return out, nil
}

func (r *stubPremiumRepo) CountPendingByOwner(_ context.Context, owner string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, req := range r.byBiodata {
		if req.OwnerEmail == owner && req.Status == domain.StatusPending {
			n++
		}
	}
	return n, nil
}

type stubPaymentLedger struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
}

func newStubPaymentLedger() *stubPaymentLedger {
	return &stubPaymentLedger{payments: make(map[string]*domain.Payment)}
}

// confirmed seeds a confirmed payment made by payer.
func (l *stubPaymentLedger) confirmed(ref, payer string) *stubPaymentLedger {
	now := time.Now().UTC()
	l.payments[ref] = &domain.Payment{Ref: ref, PayerEmail: payer, Status: domain.PaymentConfirmed, ConfirmedAt: &now}
	return l
}

func (l *stubPaymentLedger) Insert(_ context.Context, p *domain.Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	clone := *p
	l.payments[p.Ref] = &clone
	return nil
}

func (l *stubPaymentLedger) FindByRef(_ context.Context, ref string) (*domain.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.payments[ref]
	if !ok {
		return nil, domain.ErrPaymentRequired
	}
	clone := *p
	return &clone, nil
}

func (l *stubPaymentLedger) MarkConfirmed(_ context.Context, ref string, at time.Time) (*domain.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.payments[ref]
	if !ok {
		return nil, domain.ErrPaymentRequired
	}
	if p.Status != domain.PaymentConfirmed {
		p.Status = domain.PaymentConfirmed
		stamp := at
		p.ConfirmedAt = &stamp
	}
	clone := *p
	return &clone, nil
}

func (l *stubPaymentLedger) Consume(_ context.Context, ref, payer, requestID string, at time.Time) (*domain.Payment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.payments[ref]
	if !ok || !p.Spendable(payer) {
		return nil, domain.ErrPaymentRequired
	}
	p.ConsumedBy = requestID
	stamp := at
	p.ConsumedAt = &stamp
	clone := *p
	return &clone, nil
}

func (l *stubPaymentLedger) Release(_ context.Context, ref, requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.payments[ref]; ok && p.ConsumedBy == requestID {
		p.ConsumedBy, p.ConsumedAt = "", nil
	}
	return nil
}

// stubCache follows the Redis cache contract: Set is a compare-and-set on
// the per-account generation that Invalidate bumps.
type stubCache struct {
	mu          sync.Mutex
	entries     map[string]domain.Privileges
	generations map[string]int64
	getErr      error
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string]domain.Privileges), generations: make(map[string]int64)}
}

func (c *stubCache) Get(_ context.Context, email string) (ports.PrivilegeSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return ports.PrivilegeSnapshot{}, c.getErr
	}
	p, ok := c.entries[email]
	return ports.PrivilegeSnapshot{Privileges: p, Hit: ok, Generation: c.generations[email]}, nil
}

func (c *stubCache) Set(_ context.Context, email string, p domain.Privileges, generation int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[email] != generation {
		return false, nil
	}
	c.entries[email] = p
	return true, nil
}

func (c *stubCache) Invalidate(_ context.Context, email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[email]++
	delete(c.entries, email)
	c.invalidated = append(c.invalidated, email)
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AccessEvent
}

func (a *recordingAudit) Enqueue(e domain.AccessEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) kinds() []domain.AccessEventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AccessEventKind, len(a.events))
	for i, e := range a.events {
		out[i] = e.Kind
	}
	return out
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const (
	adminEmail = "admin@example.com"
	ownerEmail = "owner@example.com"
	seekerR    = "r@example.com"
)

func adminAccount() *domain.Account {
	a := domain.NewAccount(domain.Identity{Email: adminEmail, DisplayName: "Admin"}, time.Now().UTC())
	a.Role = domain.RoleAdmin
	return a
}

func standardAccount(email string) *domain.Account {
	return domain.NewAccount(domain.Identity{Email: email, DisplayName: email}, time.Now().UTC())
}

func profile42() domain.Profile {
	return domain.Profile{
		BiodataID:    42,
		OwnerEmail:   ownerEmail,
		ContactEmail: "bride42@example.com",
		MobileNumber: "+8801700000042",
	}
}

func profile7() domain.Profile {
	return domain.Profile{BiodataID: 7, OwnerEmail: ownerEmail}
}

type fixture struct {
	accounts    *stubAccountRepo
	profiles    *stubProfileRepo
	disclosures *stubDisclosureRepo
	premiums    *stubPremiumRepo
	ledger      *stubPaymentLedger
	audit       *recordingAudit
	roles       *RoleResolver
}

func newFixture() *fixture {
	f := &fixture{
		accounts:    newStubAccountRepo(adminAccount(), standardAccount(ownerEmail), standardAccount(seekerR)),
		profiles:    newStubProfileRepo(profile42(), profile7()),
		disclosures: newStubDisclosureRepo(),
		ledger:      newStubPaymentLedger(),
		audit:       &recordingAudit{},
	}
	f.premiums = newStubPremiumRepo(f.profiles)
	f.roles = NewRoleResolver(f.accounts, nil, discardLogger)
	return f
}

func (f *fixture) payments() *PaymentService {
	return NewPaymentService(f.ledger, PaymentPrice{AmountMinor: 50000, Currency: "BDT"}, f.audit, discardLogger)
}

func (f *fixture) disclosureService() *DisclosureService {
	return NewDisclosureService(f.disclosures, f.profiles, f.payments(), f.roles, f.audit, discardLogger)
}

func (f *fixture) premiumService() *PremiumService {
	return NewPremiumService(f.premiums, f.profiles, f.accounts, f.roles, f.audit, discardLogger)
}

func (f *fixture) contactService() *ContactService {
	return NewContactService(f.profiles, f.disclosures, f.roles)
}
