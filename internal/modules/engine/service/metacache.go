package service

import (
	"context"
	"sync"
	"time"
	"trade_engine/internal/models"
)

type metaEntry struct {
	meta      models.SymbolMetadata
	fetchedAt time.Time
}

// MetaCache holds per-symbol precision metadata with a TTL. Entries are
// overwrite-only and immutable within the TTL window, so racing fetches for
// the same symbol are harmless (last write wins).
type MetaCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]metaEntry
}

func NewMetaCache(ttl time.Duration) *MetaCache {
	return &MetaCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]metaEntry),
	}
}

func (c *MetaCache) Resolve(ctx context.Context, v Venue, symbol string) (models.SymbolMetadata, error) {
	c.mu.RLock()
	e, ok := c.entries[symbol]
	c.mu.RUnlock()

	if ok && c.now().Sub(e.fetchedAt) < c.ttl {
		return e.meta, nil
	}

	meta, err := v.SymbolMetadata(ctx, symbol)
	if err != nil {
		return models.SymbolMetadata{}, err
	}

	c.mu.Lock()
	c.entries[symbol] = metaEntry{meta: meta, fetchedAt: c.now()}
	c.mu.Unlock()

	return meta, nil
}
