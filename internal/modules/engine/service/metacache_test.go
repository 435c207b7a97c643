package service

import (
	"context"
	"testing"
	"time"

	"trade_engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaCacheReusesWithinTTL(t *testing.T) {
	v := &fakeVenue{meta: models.SymbolMetadata{Symbol: "BTCUSDT", PricePrecision: 2, QtyPrecision: 3}}
	c := NewMetaCache(time.Hour)

	for i := 0; i < 3; i++ {
		m, err := c.Resolve(context.Background(), v, "BTCUSDT")
		require.NoError(t, err)
		assert.Equal(t, 3, m.QtyPrecision)
	}
	assert.Equal(t, 1, v.metaCalls)
}

func TestMetaCacheRefetchesAfterTTL(t *testing.T) {
	v := &fakeVenue{meta: models.SymbolMetadata{Symbol: "BTCUSDT", PricePrecision: 2, QtyPrecision: 3}}
	c := NewMetaCache(time.Hour)

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	_, err := c.Resolve(context.Background(), v, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, v.metaCalls)

	now = now.Add(59 * time.Minute)
	_, err = c.Resolve(context.Background(), v, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, v.metaCalls)

	now = now.Add(2 * time.Minute)
	_, err = c.Resolve(context.Background(), v, "BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, v.metaCalls)
}

func TestMetaCacheErrorNotCached(t *testing.T) {
	v := &fakeVenue{metaErr: models.ErrSymbolNotFound}
	c := NewMetaCache(time.Hour)

	_, err := c.Resolve(context.Background(), v, "NOPEUSDT")
	require.Error(t, err)

	v.metaErr = nil
	v.meta = models.SymbolMetadata{Symbol: "NOPEUSDT", QtyPrecision: 1}
	m, err := c.Resolve(context.Background(), v, "NOPEUSDT")
	require.NoError(t, err)
	assert.Equal(t, 1, m.QtyPrecision)
	assert.Equal(t, 2, v.metaCalls)
}

func TestMetaCachePerSymbol(t *testing.T) {
	v := &fakeVenue{meta: models.SymbolMetadata{PricePrecision: 2, QtyPrecision: 3}}
	c := NewMetaCache(time.Hour)

	_, err := c.Resolve(context.Background(), v, "BTCUSDT")
	require.NoError(t, err)
	_, err = c.Resolve(context.Background(), v, "ETHUSDT")
	require.NoError(t, err)
	assert.Equal(t, 2, v.metaCalls)
}
