package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps wizard sessions between requests.
// Update must apply fn atomically with respect to other Updates of the same id.
type SessionStore interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error)
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	sessions map[string]*Session
	mu       sync.Mutex
	timeout  time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(timeout time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
		now:      time.Now,
	}
}

func (m *MemorySessionStore) Create(ctx context.Context) (*Session, error) {
	s := newSession(uuid.New().String(), m.timeout)
	s.ExpiresAt = m.now().Add(m.timeout)

	m.mu.Lock()
	m.sweepLocked()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s.clone(), nil
}

func (m *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.liveLocked(id)
	if err != nil {
		return nil, err
	}
	return s.clone(), nil
}

func (m *MemorySessionStore) Update(ctx context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.liveLocked(id)
	if err != nil {
		return nil, err
	}

	working := s.clone()
	if err := fn(working); err != nil {
		return s.clone(), err
	}
	working.ExpiresAt = m.now().Add(m.timeout)
	m.sessions[id] = working
	return working.clone(), nil
}

func (m *MemorySessionStore) liveLocked(id string) (*Session, error) {
	s, exists := m.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if m.now().After(s.ExpiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemorySessionStore) sweepLocked() {
	now := m.now()
	for id, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, id)
		}
	}
}
