package account

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps accounts in process. It backs tests and local
// development without postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]Account),
		now:      time.Now,
	}
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) Create(_ context.Context, a *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.ID]; exists {
		return ErrDuplicate
	}
	for _, other := range s.accounts {
		if a.Slug != "" && other.Slug == a.Slug {
			return ErrSlugTaken
		}
	}
	now := s.now()
	stored := *a
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.accounts[a.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.Name = p.Name
	a.FullName = p.FullName
	a.Email = p.Email
	a.UpdatedAt = s.now()
	s.accounts[id] = a
	return nil
}

func (s *MemoryStore) UpdateTokens(_ context.Context, id string, t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.AccessToken = t.AccessToken
	a.RefreshToken = t.RefreshToken
	a.TokenExpires = t.Expires
	a.UpdatedAt = s.now()
	s.accounts[id] = a
	return nil
}

// Count returns the number of stored accounts.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
