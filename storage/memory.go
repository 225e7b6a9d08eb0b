package storage

import (
	"context"
	"sync"

	"github.com/kbukum/authkit/logger"
)

func init() {
	RegisterFactory(ProviderMemory, func(Config, any, *logger.Logger) (Strategy, error) {
		return NewMemory(), nil
	})
}

// Memory is a process-local Strategy. Its contents do not survive the process.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
}

var _ Strategy = (*Memory)(nil)

// NewMemory creates an empty in-memory strategy.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]string)}
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.items)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
