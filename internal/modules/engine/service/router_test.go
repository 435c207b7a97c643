package service

import (
	"context"
	"testing"

	"trade_engine/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterRepliesOnChannel(t *testing.T) {
	v := healthyEntryVenue()
	e, n := newTestEngine(v)
	r := NewRouter(e, n)

	resp := make(chan Response, 1)
	r.OnIntent(context.Background(), Request{
		AccountID: "acct-1",
		Intent:    entryIntent(),
		Resp:      resp,
	})

	out := <-resp
	require.NoError(t, out.Err)
	assert.True(t, out.Result.Success)
}

func TestRouterRejectsInvalidIntentBeforeVenue(t *testing.T) {
	v := healthyEntryVenue()
	e, n := newTestEngine(v)
	r := NewRouter(e, n)

	intent := entryIntent()
	intent.StoplossPrice = 0

	resp := make(chan Response, 1)
	r.OnIntent(context.Background(), Request{AccountID: "acct-1", Intent: intent, Resp: resp})

	out := <-resp
	var ve *models.ValidationError
	require.ErrorAs(t, out.Err, &ve)
	assert.Empty(t, v.markets)
	assert.Empty(t, v.leverages)
}

func TestRouterNotifiesCompensationFailure(t *testing.T) {
	v := healthyEntryVenue()
	v.stopFn = func(o models.StopOrder) (models.ExecutedOrder, error) {
		return models.ExecutedOrder{}, &models.VenueError{Op: "PlaceOrder", Status: 400}
	}
	v.marketFn = func(o models.MarketOrder) (models.ExecutedOrder, error) {
		if o.ReduceOnly {
			return models.ExecutedOrder{}, &models.VenueError{Op: "PlaceOrder", Status: 400}
		}
		return models.ExecutedOrder{OrigQty: o.Qty, FilledQty: o.Qty, AvgPrice: 100}, nil
	}
	e, n := newTestEngine(v)
	r := NewRouter(e, n)

	r.OnIntent(context.Background(), Request{AccountID: "acct-1", Intent: entryIntent()})
	assert.NotEmpty(t, n.msgs)
}

func TestRouterFireAndForget(t *testing.T) {
	v := healthyEntryVenue()
	e, n := newTestEngine(v)
	r := NewRouter(e, n)

	// nil Resp must not panic or block
	r.OnIntent(context.Background(), Request{AccountID: "acct-1", Intent: entryIntent()})
	require.Len(t, v.markets, 1)
}
