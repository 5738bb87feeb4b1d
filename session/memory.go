package session

import (
	"context"
	"sync"
)

// MemoryStore is the default in-process backend. A process restart loses
// all sessions; clients re-extract.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// entry serializes Update calls per session id without blocking access to
// other sessions.
type entry struct {
	mu      sync.Mutex
	session *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*entry)}
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	clone := s.Clone()

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[s.ID]; ok {
		e.mu.Lock()
		e.session = clone
		e.mu.Unlock()
		return nil
	}
	m.sessions[s.ID] = &entry{session: clone}
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Clone(), nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, id string, mutate func(*Session) error) error {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	working := e.session.Clone()
	if err := mutate(working); err != nil {
		return err
	}
	e.session = working
	return nil
}

// Len reports the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
