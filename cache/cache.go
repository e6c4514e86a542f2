// Package cache persists dedup identities so repeated delivery of the same
// logical work can be detected upstream. The completion handler only writes;
// reads belong to whoever decides whether to reprocess.
package cache

import (
	"context"
	"sync"
)

// Cache stores opaque dedup identities.
type Cache interface {
	Store(ctx context.Context, identity []byte) error
}

// Memory is an in-process Cache for tests and local runs.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

func (m *Memory) Store(ctx context.Context, identity []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.seen[string(identity)] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Contains reports whether an identity was stored.
func (m *Memory) Contains(identity []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[string(identity)]
	return ok
}

// Len reports the number of stored identities.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
