package session

import (
	"sync"

	"github.com/PalashJyoti/mindsight-client/users"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the session in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *users.CurrentUser
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) User() (*users.CurrentUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, nil
	}
	// Copy so callers cannot modify the cached value
	u := *s.user
	return &u, nil
}

func (s *MemoryStore) SetUser(user *users.CurrentUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.user = nil
		return nil
	}
	u := *user
	s.user = &u
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}
