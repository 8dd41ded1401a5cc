package sdk

import "sync"

// TokenStore holds the current session token. Implementations must make a
// successful SetToken or ClearToken visible to the next Token call.
type TokenStore interface {
	// Token returns the stored token and whether one is present.
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

// MemoryStore is a process-local TokenStore.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ TokenStore = (*MemoryStore)(nil)

// NewMemoryStore returns a store seeded with token (may be empty).
func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (s *MemoryStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearToken() error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
