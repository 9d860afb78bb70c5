package memory

import (
	"context"
	"sync"
)

// TokenStore keeps one session token per browser tab in process memory.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]string)}
}

func (s *TokenStore) Get(_ context.Context, tabID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[tabID]
	return token, ok, nil
}

func (s *TokenStore) Set(_ context.Context, tabID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tabID] = token
	return nil
}

func (s *TokenStore) Clear(_ context.Context, tabID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tabID)
	return nil
}
