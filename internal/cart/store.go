package cart

import (
	"errors"
	"sync"
)

// Store is session-scoped key/value storage, the server-side stand-in for a browser's
// local storage.
type Store interface {
	// Read reports ok=false when nothing is stored under key.
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
	Delete(key string) error
}

var ErrStoreFull = errors.New("cart: storage quota exceeded")

// MemoryStore keeps values in a map. MaxBytes > 0 caps the size of a single value.
type MemoryStore struct {
	MaxBytes int

	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{data: map[string]string{}} }

func (m *MemoryStore) Read(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) Write(key, value string) error {
	if m.MaxBytes > 0 && len(value) > m.MaxBytes {
		return ErrStoreFull
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
