package identity

import (
	"context"
	"sync"

	"staging-pro-backend/internal/models"
)

type resolver interface {
	Resolve(ctx context.Context, principalID, rawEmail string) models.User
}

// Tracker keeps the latest resolved identity per principal. Each Refresh
// takes a generation token before resolving and commits only if no newer
// Refresh for the same principal started in the meantime. Generation state
// lives only while a Refresh for the principal is in flight; committed
// identities stay until Forget.
type Tracker struct {
	resolver resolver

	mu       sync.Mutex
	inflight map[string]*flight
	current  map[string]models.User
}

type flight struct {
	generation uint64
	pending    int
}

func NewTracker(r resolver) *Tracker {
	return &Tracker{
		resolver: r,
		inflight: make(map[string]*flight),
		current:  make(map[string]models.User),
	}
}

// Refresh resolves the principal again. The returned bool is false when
// this resolution was superseded; the user is then the newest committed
// identity, which may be the zero value if none has committed yet.
func (t *Tracker) Refresh(ctx context.Context, principalID, rawEmail string) (models.User, bool) {
	t.mu.Lock()
	f, ok := t.inflight[principalID]
	if !ok {
		f = &flight{}
		t.inflight[principalID] = f
	}
	f.generation++
	f.pending++
	token := f.generation
	t.mu.Unlock()

	user := t.resolver.Resolve(ctx, principalID, rawEmail)

	t.mu.Lock()
	defer t.mu.Unlock()
	f.pending--
	if f.pending == 0 {
		delete(t.inflight, principalID)
	}
	if f.generation != token {
		return t.current[principalID], false
	}
	t.current[principalID] = user
	return user, true
}

func (t *Tracker) Current(principalID string) (models.User, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	user, ok := t.current[principalID]
	return user, ok
}

// Forget drops the committed identity and invalidates any resolution
// still in flight for the principal.
func (t *Tracker) Forget(principalID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.inflight[principalID]; ok {
		f.generation++
	}
	delete(t.current, principalID)
}
