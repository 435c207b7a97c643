package service

import (
	"context"
	"fmt"
	"trade_engine/internal/helper"
	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"
)

const stopOrderType = "STOP_MARKET"

// moveStop replaces the resting protective stops for a symbol with a single
// stop at the new price covering the whole position. The window between
// cancel and re-submit is accepted as-is: the venue offers no transactional
// replace.
func (e *Engine) moveStop(ctx context.Context, v Venue, intent models.TradeIntent) (models.OrderResult, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.moveStop")
	defer span.Finish()

	meta, err := e.meta.Resolve(ctx, v, intent.Symbol)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("resolve metadata: %w", err)
	}

	pos, err := v.Position(ctx, intent.Symbol)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("get position: %w", err)
	}
	if pos == nil || pos.Flat() {
		return models.OrderResult{}, &models.StateConflictError{Kind: models.ConflictNoPosition, Symbol: intent.Symbol}
	}

	orders, err := v.OpenOrders(ctx, intent.Symbol)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("list orders: %w", err)
	}

	var stopIDs []int64
	for _, o := range orders {
		if o.Type == stopOrderType {
			stopIDs = append(stopIDs, o.OrderID)
		}
	}

	// cancelling an empty batch is a venue error, skip the call entirely
	if len(stopIDs) > 0 {
		if err := v.CancelOrders(ctx, intent.Symbol, stopIDs); err != nil {
			return models.OrderResult{}, fmt.Errorf("cancel stops: %w", err)
		}
	}

	px := helper.TruncateTo(intent.StoplossPrice, meta.PricePrecision)
	qty := pos.AbsQty()

	if _, err := v.PlaceStopOrder(ctx, models.StopOrder{
		Symbol:        intent.Symbol,
		Side:          pos.Side().Opposite(),
		StopPrice:     px,
		Qty:           qty,
		ClosePosition: true,
	}); err != nil {
		e.notifier.Sendf("🚨 %s: old stops cancelled but new stop failed, position may be unprotected", intent.Symbol)
		return models.OrderResult{}, fmt.Errorf("place stop: %w", err)
	}

	logger.Info("moved stop %s -> %.8f (cancelled %d)", intent.Symbol, px, len(stopIDs))
	return models.OrderResult{Success: true, Stoploss: px, Qty: qty}, nil
}
