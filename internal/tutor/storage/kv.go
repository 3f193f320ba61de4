package storage

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

// Keys used by the client side of the tutor.
const (
	KeyUserMemory          = "aiTutorUserMemory"
	KeyConversationHistory = "aiTutorConversationHistory"
	KeyUserLanguage        = "userLanguage"
	KeyScenarioObjectives  = "currentScenarioObjectives"
)

// KV is a small string key/value store, the client-local equivalent of
// browser local storage.
type KV interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

var keyRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

var (
	_ KV = (*MemoryStore)(nil)
	_ KV = (*FileStore)(nil)
	_ KV = (*RedisStore)(nil)
)
