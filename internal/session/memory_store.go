package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process. Expired sessions are treated as
// missing and dropped lazily.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	values   map[string]map[string]string
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		values:   make(map[string]map[string]string),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	if s.SessionID == "" {
		return fmt.Errorf("session: missing session_id")
	}
	if !s.ExpiresAt.After(m.now()) {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(sessionID)
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemoryStore) Update(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !s.ExpiresAt.After(m.now()) {
		m.drop(s.SessionID)
		return nil
	}
	m.sessions[s.SessionID] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drop(sessionID)
	return nil
}

func (m *MemoryStore) Put(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(sessionID); !ok {
		return ErrNotFound
	}
	vals, ok := m.values[sessionID]
	if !ok {
		vals = make(map[string]string)
		m.values[sessionID] = vals
	}
	vals[key] = value
	return nil
}

func (m *MemoryStore) Pull(_ context.Context, sessionID, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(sessionID); !ok {
		return "", nil
	}
	val := m.values[sessionID][key]
	delete(m.values[sessionID], key)
	return val, nil
}

// Value peeks at a value without clearing it.
func (m *MemoryStore) Value(sessionID, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[sessionID][key]
	return v, ok
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id := range m.sessions {
		if _, ok := m.live(id); ok {
			n++
		}
	}
	return n
}

// live must be called with mu held.
func (m *MemoryStore) live(sessionID string) (Session, bool) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	if !s.ExpiresAt.After(m.now()) {
		m.drop(sessionID)
		return Session{}, false
	}
	return s, true
}

func (m *MemoryStore) drop(sessionID string) {
	delete(m.sessions, sessionID)
	delete(m.values, sessionID)
}
