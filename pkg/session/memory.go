package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore implements Store using an in-memory map.
// It is only suitable for a single server instance.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
	// nextSweep is when Set next scans for expired entries.
	nextSweep time.Time
}

// NewMemoryStore creates a new instance of MemoryStore whose sessions live
// for ttl after their last write.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

// Get returns a copy of the stored session.
// Expired sessions are removed and reported as ErrSessionNotFound.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	m.mu.RLock()
	entry, exists := m.sessions[id]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	if !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		if current, ok := m.sessions[id]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return nil, ErrSessionNotFound
	}

	return entry.session.Clone(), nil
}

// Set stores a copy of the session. At most once per TTL it also drops
// every expired entry, so sessions that are never read again are reclaimed.
func (m *MemoryStore) Set(ctx context.Context, s *Session) error {
	if err := validate(s); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !now.Before(m.nextSweep) {
		m.sweep(now)
		m.nextSweep = now.Add(m.ttl)
	}

	m.sessions[s.ID] = memoryEntry{
		session:   s.Clone(),
		expiresAt: now.Add(m.ttl),
	}
	return nil
}

// sweep removes expired entries. Callers must hold mu.
func (m *MemoryStore) sweep(now time.Time) {
	for id, entry := range m.sessions {
		if !now.Before(entry.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// Len returns the number of stored sessions, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
