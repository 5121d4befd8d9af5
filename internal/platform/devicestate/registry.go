// Copyright (c) 2026 Souk Bazaar Hub. All rights reserved.

package devicestate

import (
	"context"
	"sync"
	"time"
)

// OpenFunc builds the live object of a device, typically by loading its
// persisted state. A failed open is not cached: the next Get retries it.
type OpenFunc[T any] func(ctx context.Context, deviceID string) (T, error)

type registryEntry[T any] struct {
	ready    chan struct{}
	value    T
	err      error
	lastSeen time.Time
}

// Registry keeps one live T per device id.
//
// Entries untouched for longer than the idle TTL are dropped by [Registry.Run];
// the next [Registry.Get] opens them again from persisted state.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*registryEntry[T]
	open    OpenFunc[T]
	idleTTL time.Duration
	now     func() time.Time
}

// NewRegistry creates a registry that opens entries with open.
func NewRegistry[T any](open OpenFunc[T], idleTTL time.Duration) *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*registryEntry[T]),
		open:    open,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// Get returns the live object of deviceID, opening it on first use.
// Concurrent first calls for the same device share one open and its outcome.
func (registry *Registry[T]) Get(ctx context.Context, deviceID string) (T, error) {
	registry.mu.Lock()
	entry, found := registry.entries[deviceID]
	if !found {
		entry = &registryEntry[T]{ready: make(chan struct{})}
		registry.entries[deviceID] = entry
	}
	entry.lastSeen = registry.now()
	registry.mu.Unlock()

	if found {
		<-entry.ready
		return entry.value, entry.err
	}

	// Opened outside the registry lock.
	entry.value, entry.err = registry.open(ctx, deviceID)
	if entry.err != nil {
		registry.mu.Lock()
		if registry.entries[deviceID] == entry {
			delete(registry.entries, deviceID)
		}
		registry.mu.Unlock()
	}
	close(entry.ready)

	return entry.value, entry.err
}

// Len reports how many devices are live.
func (registry *Registry[T]) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.entries)
}

// Sweep drops entries idle for longer than the idle TTL.
func (registry *Registry[T]) Sweep() {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	cutoff := registry.now().Add(-registry.idleTTL)
	for deviceID, entry := range registry.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(registry.entries, deviceID)
		}
	}
}

// Run sweeps every interval until ctx is cancelled.
func (registry *Registry[T]) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			registry.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
