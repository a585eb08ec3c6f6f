package draft

import "sync"

// MemoryStore is an in-memory Store, used in tests and as a throwaway
// fallback when no draft database path is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string

	// FailSet, when set, makes every Set return it. Lets tests exercise the
	// storage-error path.
	FailSet error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(key, value string) error {
	if s.FailSet != nil {
		return s.FailSet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Delete removes key.
func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
