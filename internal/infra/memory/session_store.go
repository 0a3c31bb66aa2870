package memory

import (
	"context"
	"sync"

	"quizzz-client/internal/domain"
)

// SessionStore keeps draft and play sessions in process memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string][]byte),
	}
}

func (s *SessionStore) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = append([]byte(nil), data...)
	return nil
}

func (s *SessionStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.sessions[key]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}
