package storage

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/sevigo/code-council/internal/core"
)

// MemoryStateStore is a process-local StateStore for single-instance
// deployments and the CLI. Keys expire after the configured TTL.
type MemoryStateStore struct {
	keys *cache.Cache
}

var _ core.StateStore = (*MemoryStateStore)(nil)

func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	expiry := ttl
	if expiry <= 0 {
		expiry = cache.NoExpiration
	}
	return &MemoryStateStore{keys: cache.New(expiry, 10*time.Minute)}
}

func (m *MemoryStateStore) Check(_ context.Context, key string) (bool, error) {
	_, ok := m.keys.Get(key)
	return ok, nil
}

func (m *MemoryStateStore) Record(_ context.Context, key string) error {
	m.keys.SetDefault(key, struct{}{})
	return nil
}
