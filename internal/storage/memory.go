package storage

import (
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryStore is an in-process Store. Values go through the same YAML round
// trip as FileStore, so callers never share mutable state with the store.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

// Get implements Store.
func (store *MemoryStore) Get(key string, out any) bool {
	store.mu.Lock()
	rawData, ok := store.values[key]
	store.mu.Unlock()
	if !ok {
		return false
	}
	return decode(rawData, out) == nil
}

// Set implements Store.
func (store *MemoryStore) Set(key string, value any) {
	serialized, err := yaml.Marshal(value)
	if err != nil {
		return
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = serialized
}

// SetRaw stores raw bytes under key without encoding them.
func (store *MemoryStore) SetRaw(key string, rawData []byte) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = append([]byte(nil), rawData...)
}

// Keys returns the number of stored keys.
func (store *MemoryStore) Keys() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.values)
}
