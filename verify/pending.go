package verify

import (
	"sync"
	"time"
)

// Pending - An in-flight verification attempt
type Pending struct {
	RobloxID int64
	Code     string
	IssuedAt time.Time
}

// PendingStore - In-memory map of pending attempts, one per Discord user.
// Process-lifetime only: a restart drops in-flight attempts and the user
// starts over at Begin.
type PendingStore struct {
	mu  sync.Mutex
	gen *Generator
	// TTL bounds how long an attempt stays valid, 0 disables expiry
	ttl     time.Duration
	entries map[string]Pending
	now     func() time.Time
}

// NewPendingStore - Build a store issuing codes from gen
func NewPendingStore(gen *Generator, ttl time.Duration) *PendingStore {
	return &PendingStore{
		gen:     gen,
		ttl:     ttl,
		entries: make(map[string]Pending),
		now:     time.Now,
	}
}

// Begin - Issue a new code for the user and store the attempt. An existing
// entry is overwritten, which silently invalidates the previous code.
func (p *PendingStore) Begin(userID string, robloxID int64) (Pending, error) {
	code, err := p.gen.NewCode()
	if err != nil {
		return Pending{}, err
	}
	entry := Pending{RobloxID: robloxID, Code: code, IssuedAt: p.now()}

	p.mu.Lock()
	p.entries[userID] = entry
	p.mu.Unlock()
	return entry, nil
}

// Peek - Get the live attempt for a user, if any. Expired entries count as
// absent.
func (p *PendingStore) Peek(userID string) (Pending, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[userID]
	if !ok {
		return Pending{}, false
	}
	if p.ttl > 0 && p.now().Sub(entry.IssuedAt) > p.ttl {
		delete(p.entries, userID)
		return Pending{}, false
	}
	return entry, true
}

// Clear - Drop the attempt for a user
func (p *PendingStore) Clear(userID string) {
	p.mu.Lock()
	delete(p.entries, userID)
	p.mu.Unlock()
}
