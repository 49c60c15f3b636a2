package session

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu sync.RWMutex
	s  Session
}

// NewMemoryStore returns a store pre-loaded with s (which may be zero).
func NewMemoryStore(s Session) *MemoryStore {
	return &MemoryStore{s: s}
}

// Get implements Store.
func (m *MemoryStore) Get(ctx context.Context) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.s, nil
}

// Set implements Store.
func (m *MemoryStore) Set(ctx context.Context, token, email string) error {
	if err := validate(token, email); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = Session{Token: token, Email: email}
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = Session{}
	return nil
}
