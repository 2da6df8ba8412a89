package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iwvelando/installment-plan/internal/plan"
	"github.com/iwvelando/installment-plan/pkg/constants"
)

type memoryEntry struct {
	result    plan.Result
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are dropped lazily on
// access and by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a MemoryStore whose entries live for ttl. A
// non-positive ttl falls back to the default session TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Save stores result under id, replacing any previous value.
func (s *MemoryStore) Save(ctx context.Context, id string, result plan.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = memoryEntry{result: result, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Load returns the result stored under id.
func (s *MemoryStore) Load(ctx context.Context, id string) (plan.Result, error) {
	if err := ctx.Err(); err != nil {
		return plan.Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return plan.Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, id)
		return plan.Result{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return entry.result, nil
}

// Delete removes id. Deleting a missing id is not an error.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep drops all expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
