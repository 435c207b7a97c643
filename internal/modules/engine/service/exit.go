package service

import (
	"context"
	"fmt"
	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"
)

// exit idempotently flattens the position. Calling it on an already-flat
// symbol (the expected case when a resting stop triggered first) is a no-op
// success; calling it twice in succession is safe.
func (e *Engine) exit(ctx context.Context, v Venue, intent models.TradeIntent) (models.OrderResult, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.exit")
	defer span.Finish()

	// cancel resting orders first so a stop cannot fire mid-flow
	if err := v.CancelAllOrders(ctx, intent.Symbol); err != nil {
		return models.OrderResult{}, fmt.Errorf("cancel orders: %w", err)
	}

	// always a fresh read; the caller's view may predate a triggered stop
	pos, err := v.Position(ctx, intent.Symbol)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("get position: %w", err)
	}
	if pos == nil || pos.Flat() {
		logger.Info("exit %s: already flat", intent.Symbol)
		return models.OrderResult{Success: true}, nil
	}

	// never close exposure opened by something else (e.g. a fill that
	// flipped the position between the caller's read and now)
	if pos.Side() != intent.Side {
		return models.OrderResult{}, &models.StateConflictError{Kind: models.ConflictSideMismatch, Symbol: intent.Symbol}
	}

	qty := pos.AbsQty()
	if _, err := v.PlaceMarketOrder(ctx, models.MarketOrder{
		Symbol:     intent.Symbol,
		Side:       intent.Side.Opposite(),
		Qty:        qty,
		ReduceOnly: true,
	}); err != nil {
		return models.OrderResult{}, fmt.Errorf("close position: %w", err)
	}

	logger.Info("exit %s: closed qty=%.8f", intent.Symbol, qty)
	return models.OrderResult{Success: true, Qty: qty, Entry: pos.EntryPrice}, nil
}
