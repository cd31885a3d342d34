package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"
)

// Store persists finished translations.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, model, translation string) error
}

// Key derives the cache key for a prompt sent to a model.
func Key(model, prompt string) string {
	h := md5.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// MemoryStore stores translations in memory for the lifetime of the process.
type MemoryStore struct {
	mu           sync.RWMutex
	translations map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		translations: make(map[string]string),
	}
}

// Get retrieves a translation.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	translation, ok := s.translations[key]
	return translation, ok, nil
}

// Put adds or replaces a translation.
func (s *MemoryStore) Put(_ context.Context, key, _ string, translation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translations[key] = translation
	return nil
}
