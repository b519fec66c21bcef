package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/loginflow/internal/client/models"
)

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]string
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrClosed
	}
	return m.data[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[key] = value
	return nil
}

func (m *MemoryStore) SetTokens(_ context.Context, pair models.TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.data[KeyAccessToken] = pair.Access
	m.data[KeyRefreshToken] = pair.Refresh
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	clear(m.data)
	return nil
}

// Snapshot returns a copy of the stored keys.
func (m *MemoryStore) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
