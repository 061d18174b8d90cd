// Package storage holds the cart snapshot backends. Every backend is a plain
// key-value store keyed by cart.StorageKey and returns nil, nil on a miss.
package storage

import (
	"context"
	"sync"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

var (
	_ cart.Storage = (*Memory)(nil)
	_ cart.Storage = (*Redis)(nil)
	_ cart.Storage = (*Postgres)(nil)
)

// Memory keeps snapshots in process. Used for local runs and tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (m *Memory) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
