package store

import (
	"strings"
	"sync"
)

// MemoryStorage keeps keys in a map.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// SetWithQuota writes key unless the keys under prefix, with key replaced by
// the new value, would exceed quotaBytes.
func (m *MemoryStorage) SetWithQuota(key, value, prefix string, quotaBytes int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := len(key) + len(value)
	for k, v := range m.data {
		if k != key && strings.HasPrefix(k, prefix) {
			used += len(k) + len(v)
		}
	}
	if quotaBytes > 0 && used > quotaBytes {
		return ErrQuotaExceeded
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
