package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sumamakhan761/vendor-management/internal/domain"
	"github.com/sumamakhan761/vendor-management/internal/store"
)

type fakeVendorRepo struct {
	mu      sync.Mutex
	vendors map[uuid.UUID]domain.Vendor
	clock   time.Time

	failCreate error
	failFind   error
	// dropBeforeWrite simulates a concurrent delete between load and write.
	dropBeforeWrite bool
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{
		vendors: map[uuid.UUID]domain.Vendor{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeVendorRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Minute)
	return r.clock
}

func (r *fakeVendorRepo) seed(v domain.Vendor) domain.Vendor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := r.tick()
	v.CreatedAt, v.UpdatedAt = now, now
	r.vendors[v.ID] = v
	return v
}

func (r *fakeVendorRepo) ListVendorsByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Vendor
	for _, v := range r.vendors {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeVendorRepo) CreateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	if r.failCreate != nil {
		return nil, r.failCreate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v := *vendor
	now := r.tick()
	v.CreatedAt, v.UpdatedAt = now, now
	r.vendors[v.ID] = v
	return &v, nil
}

func (r *fakeVendorRepo) FindVendorByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	if r.failFind != nil {
		return nil, r.failFind
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[vendorID]
	if !ok {
		return nil, store.ErrVendorNotFound
	}
	return &v, nil
}

func (r *fakeVendorRepo) UpdateVendor(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropBeforeWrite {
		delete(r.vendors, vendor.ID)
	}
	existing, ok := r.vendors[vendor.ID]
	if !ok || existing.UserID != vendor.UserID {
		return nil, store.ErrVendorNotFound
	}
	v := *vendor
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = r.tick()
	r.vendors[v.ID] = v
	return &v, nil
}

func (r *fakeVendorRepo) DeleteVendor(ctx context.Context, vendorID uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dropBeforeWrite {
		delete(r.vendors, vendorID)
	}
	existing, ok := r.vendors[vendorID]
	if !ok || existing.UserID != userID {
		return store.ErrVendorNotFound
	}
	delete(r.vendors, vendorID)
	return nil
}

func (r *fakeVendorRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.vendors)
}

type publishedEvent struct {
	exchange   string
	routingKey string
	body       interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{exchange: exchange, routingKey: routingKey, body: body})
	return p.err
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) routingKeys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	keys := make([]string, 0, len(p.events))
	for _, e := range p.events {
		keys = append(keys, e.routingKey)
	}
	return keys
}

type fakeUserRepo struct {
	mu        sync.Mutex
	bySubject map[string]domain.User
	err       error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{bySubject: map[string]domain.User{}}
}

func (r *fakeUserRepo) UpsertGoogleUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.bySubject[user.GoogleSubject]
	if !ok {
		u = domain.User{ID: uuid.New(), GoogleSubject: user.GoogleSubject, CreatedAt: time.Now()}
	}
	u.Email, u.Name, u.Image = user.Email, user.Name, user.Image
	u.UpdatedAt = time.Now()
	r.bySubject[user.GoogleSubject] = u
	return &u, nil
}

type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeRevocations() *fakeRevocations {
	return &fakeRevocations{revoked: map[string]time.Duration{}}
}

func (f *fakeRevocations) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[sessionID] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[sessionID]
	return ok, nil
}

var errBoom = errors.New("boom")

func strPtr(s string) *string { return &s }
