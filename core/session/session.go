// Package session keeps the last estimate of each user session.
//
// A session's value changes only when the user explicitly recalculates;
// nothing here recomputes an estimate.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"hotel-capacity/core/estimate"
	"hotel-capacity/internal/errors"
)

// Store holds the last estimate per session id
type Store interface {
	// Get returns the last estimate, or nil when the session has none
	Get(ctx context.Context, id string) (*estimate.Estimate, error)

	// Put replaces the last estimate of a session
	Put(ctx context.Context, id string, est *estimate.Estimate) error

	// Drop forgets a session
	Drop(ctx context.Context, id string) error
}

// FieldSessionID is the input field naming a session
const FieldSessionID = "session_id"

// ValidateID rejects ids that cannot key a session
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Validation(FieldSessionID, "must not be empty")
	}
	if len(id) > 128 {
		return errors.Validation(FieldSessionID, "must be at most 128 characters")
	}
	return nil
}

type memoryEntry struct {
	est     *estimate.Estimate
	expires time.Time
}

// MemoryStore is an in-process Store. Entries expire after ttl; a zero ttl
// keeps them for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, id string) (*estimate.Estimate, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, id)
		return nil, nil
	}
	return e.est, nil
}

// Put implements Store
func (m *MemoryStore) Put(_ context.Context, id string, est *estimate.Estimate) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{est: est}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.entries[id] = e
	return nil
}

// Drop implements Store
func (m *MemoryStore) Drop(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}
