package session

import (
	"context"
	"sync"
)

// MemoryBackend keeps encoded sessions in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[int64][]byte
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[int64][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, chatID int64) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.data[chatID]
	return b, ok, nil
}

func (m *MemoryBackend) Save(_ context.Context, chatID int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[chatID] = data
	return nil
}
