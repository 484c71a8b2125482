package cart

import (
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Storage.Load when nothing is stored under a key.
var ErrNoSnapshot = errors.New("cart snapshot not found")

// Storage is the durable key/value area snapshots are written to.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// Namespaces hands out one Storage per browser profile.
type Namespaces interface {
	Namespace(name string) Storage
}

type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStorage) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) Namespace(name string) Storage {
	return prefixed{inner: m, prefix: name + "/"}
}

type prefixed struct {
	inner  Storage
	prefix string
}

func (p prefixed) Load(key string) ([]byte, error)   { return p.inner.Load(p.prefix + key) }
func (p prefixed) Save(key string, data []byte) error { return p.inner.Save(p.prefix+key, data) }
