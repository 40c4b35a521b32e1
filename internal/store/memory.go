// internal/store/memory.go
package store

import (
	"encoding/json"
	"sync"

	"sttbackend/internal/logger"
)

// MemoryStore keeps values in a map. It honors the same JSON round-trip
// contract as the sqlite store, so loaded values never alias saved ones.
// Used by tests and throwaway instances; nothing survives the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) Load(key string, out interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		logger.LogWarn("Discarding corrupt value for key %q: %v", key, err)
		return false, nil
	}

	return true, nil
}

func (s *MemoryStore) Save(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return &PersistenceError{Op: "save", Key: key, Err: err}
	}

	s.mu.Lock()
	s.values[key] = string(raw)
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()

	return nil
}
