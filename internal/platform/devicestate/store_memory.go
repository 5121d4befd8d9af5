// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package devicestate

import (
	"context"
	"sync"
)

// MemoryKV is an in-process [KV]. Values do not survive a restart.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]map[string][]byte

	// FailReads and FailWrites make every Get or Set return the error. Tests
	// use them to simulate an unavailable store.
	FailReads  error
	FailWrites error
}

// NewMemoryKV creates an empty in-memory namespace.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, deviceID, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailReads != nil {
		return nil, false, m.FailReads
	}
	value, found := m.values[deviceID][key]
	if !found {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryKV) Set(_ context.Context, deviceID, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites != nil {
		return m.FailWrites
	}
	if m.values[deviceID] == nil {
		m.values[deviceID] = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.values[deviceID][key] = stored
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, deviceID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values[deviceID], key)
	return nil
}
