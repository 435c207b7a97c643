package service

import (
	"context"
	"errors"
	"testing"

	"trade_engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyEntryVenue() *fakeVenue {
	return &fakeVenue{
		meta:    models.SymbolMetadata{PricePrecision: 2, QtyPrecision: 3},
		balance: models.Balance{Asset: "USDT", Total: 10000, Available: 10000},
		price:   100,
	}
}

func TestEntryFullProtection(t *testing.T) {
	v := healthyEntryVenue()
	e, _ := newTestEngine(v)

	res, err := e.Execute(context.Background(), "acct-1", entryIntent())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, models.ProtectionFull, res.Protection)
	assert.Equal(t, 40.0, res.Qty)
	assert.Equal(t, 95.0, res.Stoploss)
	assert.Equal(t, 110.0, res.TakeProfit)

	// one entry market order, one close-position stop, one post-only TP
	require.Len(t, v.markets, 1)
	assert.False(t, v.markets[0].ReduceOnly)

	require.Len(t, v.stops, 1)
	assert.Equal(t, models.SideSell, v.stops[0].Side)
	assert.True(t, v.stops[0].ClosePosition)

	require.Len(t, v.limits, 1)
	assert.True(t, v.limits[0].ReduceOnly)
	assert.True(t, v.limits[0].PostOnly)
}

func TestEntryProtectsFilledQtyNotRequested(t *testing.T) {
	v := healthyEntryVenue()
	v.marketFn = func(o models.MarketOrder) (models.ExecutedOrder, error) {
		return models.ExecutedOrder{
			Status:    "PARTIALLY_FILLED",
			OrigQty:   o.Qty,
			FilledQty: o.Qty / 2,
			AvgPrice:  100.5,
		}, nil
	}
	e, _ := newTestEngine(v)

	res, err := e.Execute(context.Background(), "acct-1", entryIntent())
	require.NoError(t, err)

	assert.Equal(t, 20.0, res.Qty)
	assert.Equal(t, 100.5, res.Entry)
	assert.Equal(t, 20.0, v.stops[0].Qty)
	assert.Equal(t, 20.0, v.limits[0].Qty)
}

func TestEntryMarketFailureAborts(t *testing.T) {
	v := healthyEntryVenue()
	v.marketFn = func(o models.MarketOrder) (models.ExecutedOrder, error) {
		return models.ExecutedOrder{}, &models.VenueError{Op: "PlaceOrder", Status: 400, Msg: "rejected"}
	}
	e, _ := newTestEngine(v)

	_, err := e.Execute(context.Background(), "acct-1", entryIntent())
	require.Error(t, err)

	// nothing protective was attempted
	assert.Empty(t, v.stops)
	assert.Empty(t, v.limits)
}

func TestEntryStoplossFailureCompensates(t *testing.T) {
	v := healthyEntryVenue()
	v.stopFn = func(o models.StopOrder) (models.ExecutedOrder, error) {
		return models.ExecutedOrder{}, &models.VenueError{Op: "PlaceOrder", Status: 400, Msg: "would trigger immediately"}
	}
	e, n := newTestEngine(v)

	res, err := e.Execute(context.Background(), "acct-1", entryIntent())
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, models.ProtectionCompensated, res.Protection)
	assert.Zero(t, res.TakeProfit)

	// entry then compensating close, with the exact filled quantity
	require.Len(t, v.markets, 2)
	comp := v.markets[1]
	assert.True(t, comp.ReduceOnly)
	assert.Equal(t, models.SideSell, comp.Side)
	assert.Equal(t, 40.0, comp.Qty)
	assert.Equal(t, 1, v.cancelAll)
	assert.NotEmpty(t, n.msgs)
}

func TestEntryCompensationFailureIsFatal(t *testing.T) {
	v := healthyEntryVenue()
	v.stopFn = func(o models.StopOrder) (models.ExecutedOrder, error) {
		return models.ExecutedOrder{}, errors.New("stop rejected")
	}
	v.marketFn = func(o models.MarketOrder) (models.ExecutedOrder, error) {
		if o.ReduceOnly {
			return models.ExecutedOrder{}, errors.New("close rejected")
		}
		return models.ExecutedOrder{OrigQty: o.Qty, FilledQty: o.Qty, AvgPrice: 100}, nil
	}
	e, n := newTestEngine(v)

	res, err := e.Execute(context.Background(), "acct-1", entryIntent())

	var cf *models.CompensationFailure
	require.ErrorAs(t, err, &cf)
	assert.Equal(t, "BTCUSDT", cf.Symbol)
	assert.Equal(t, 40.0, cf.Qty)
	assert.False(t, res.Success)
	assert.NotEmpty(t, n.msgs)
}

func TestEntryTakeProfitRetriesOnceAsGTC(t *testing.T) {
	v := healthyEntryVenue()
	v.limitFn = func(o models.LimitOrder) (models.ExecutedOrder, error) {
		if o.PostOnly {
			return models.ExecutedOrder{}, errors.New("would immediately match")
		}
		return models.ExecutedOrder{Price: o.Price, OrigQty: o.Qty}, nil
	}
	e, _ := newTestEngine(v)

	res, err := e.Execute(context.Background(), "acct-1", entryIntent())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, models.ProtectionFull, res.Protection)
	assert.Equal(t, 110.0, res.TakeProfit)

	// GTX attempt then one GTC retry, never a close
	require.Len(t, v.limits, 2)
	assert.True(t, v.limits[0].PostOnly)
	assert.False(t, v.limits[1].PostOnly)
	require.Len(t, v.markets, 1)
}

func TestEntryTakeProfitDegradesAfterRetry(t *testing.T) {
	v := healthyEntryVenue()
	v.limitFn = func(o models.LimitOrder) (models.ExecutedOrder, error) {
		return models.ExecutedOrder{}, errors.New("no")
	}
	e, n := newTestEngine(v)

	res, err := e.Execute(context.Background(), "acct-1", entryIntent())
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, models.ProtectionDegradedTP, res.Protection)
	assert.Zero(t, res.TakeProfit)
	assert.Equal(t, 95.0, res.Stoploss)
	require.Len(t, v.limits, 2)
	require.Len(t, v.markets, 1)
	assert.NotEmpty(t, n.msgs)
}

func TestPartialLadderAllocations(t *testing.T) {
	intent := entryIntent()
	intent.PartialProfits = []models.PartialProfit{
		{Where: 0.3, Qty: 0.3},
		{Where: 0.6, Qty: 0.3},
		{Where: 1.0, Qty: 0.4},
	}
	meta := models.SymbolMetadata{PricePrecision: 2, QtyPrecision: 3}

	orders := buildPartialLadder(intent, 40, meta)
	require.Len(t, orders, 3)

	// prices walk entry -> TP
	assert.Equal(t, 103.0, orders[0].Price)
	assert.Equal(t, 106.0, orders[1].Price)
	assert.Equal(t, 110.0, orders[2].Price)

	var total float64
	for _, o := range orders {
		assert.Equal(t, models.SideSell, o.Side)
		assert.True(t, o.ReduceOnly)
		total += o.Qty
	}
	// the last rung absorbs truncation drift
	assert.Equal(t, 40.0, total)
}

func TestPartialLadderSkipsDustRungs(t *testing.T) {
	intent := entryIntent()
	intent.PartialProfits = []models.PartialProfit{
		{Where: 0.5, Qty: 0.001},
		{Where: 1.0, Qty: 0.999},
	}
	meta := models.SymbolMetadata{PricePrecision: 2, QtyPrecision: 0}

	orders := buildPartialLadder(intent, 5, meta)
	// 5 * 0.001 truncates to zero, rung dropped; remainder keeps full size
	require.Len(t, orders, 1)
	assert.Equal(t, 5.0, orders[0].Qty)
}
