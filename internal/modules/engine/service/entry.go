package service

import (
	"context"
	"fmt"
	"sync"
	"trade_engine/internal/helper"
	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"
)

type protectiveOutcome struct {
	label string
	order models.ExecutedOrder
	err   error
}

// entry runs the ENTRY state machine: size, submit the market entry, then
// fire all protective orders concurrently and compensate failures. Entry and
// protection are split because the *filled* quantity, not the requested one,
// must drive protective sizing; partial fills happen on volatile symbols.
func (e *Engine) entry(ctx context.Context, v Venue, intent models.TradeIntent) (models.OrderResult, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.entry")
	defer span.Finish()

	sz, err := e.size(ctx, v, intent)
	if err != nil {
		return models.OrderResult{}, err
	}

	entryOrder, err := v.PlaceMarketOrder(ctx, models.MarketOrder{
		Symbol: intent.Symbol,
		Side:   intent.Side,
		Qty:    sz.Qty,
	})
	if err != nil {
		// no position was opened, nothing to compensate
		return models.OrderResult{}, fmt.Errorf("entry order: %w", err)
	}

	filled := entryOrder.FilledQty
	if filled <= 0 {
		filled = entryOrder.OrigQty
	}
	entryPx := entryOrder.AvgPrice
	if entryPx <= 0 {
		entryPx = intent.EntryPrice
	}

	logger.Info("entry %s %s qty=%.8f px=%.8f", intent.Symbol, intent.Side, filled, entryPx)

	exitSide := intent.Side.Opposite()
	slPx := helper.TruncateTo(intent.StoplossPrice, sz.Meta.PricePrecision)
	tpPx := helper.TruncateTo(intent.TakeProfitPrice, sz.Meta.PricePrecision)
	partials := buildPartialLadder(intent, filled, sz.Meta)

	// the unprotected window after the fill is minimized by submitting every
	// protective order at once
	outcomes := make([]protectiveOutcome, 2+len(partials))
	var wg sync.WaitGroup
	wg.Add(2 + len(partials))

	go func() {
		defer wg.Done()
		o, err := v.PlaceStopOrder(ctx, models.StopOrder{
			Symbol:        intent.Symbol,
			Side:          exitSide,
			StopPrice:     slPx,
			Qty:           filled,
			ClosePosition: true,
		})
		outcomes[0] = protectiveOutcome{label: "stoploss", order: o, err: err}
	}()
	go func() {
		defer wg.Done()
		o, err := v.PlaceLimitOrder(ctx, models.LimitOrder{
			Symbol:     intent.Symbol,
			Side:       exitSide,
			Price:      tpPx,
			Qty:        filled,
			ReduceOnly: true,
			PostOnly:   true,
		})
		outcomes[1] = protectiveOutcome{label: "takeprofit", order: o, err: err}
	}()
	for i := range partials {
		i := i
		go func() {
			defer wg.Done()
			o, err := v.PlaceLimitOrder(ctx, partials[i])
			outcomes[2+i] = protectiveOutcome{label: fmt.Sprintf("partial-%d", i+1), order: o, err: err}
		}()
	}
	wg.Wait()

	res := models.OrderResult{
		Success:    true,
		Protection: models.ProtectionFull,
		Entry:      entryPx,
		Qty:        filled,
	}

	slOut, tpOut := outcomes[0], outcomes[1]
	if slOut.err == nil {
		res.Stoploss = slPx
	}
	if tpOut.err == nil {
		res.TakeProfit = tpPx
	}
	for _, out := range outcomes[2:] {
		if out.err != nil {
			logger.Warn("%s %s failed: %v", intent.Symbol, out.label, out.err)
			continue
		}
		res.PartialProfits = append(res.PartialProfits, models.PartialFill{
			Price: out.order.Price,
			Qty:   out.order.OrigQty,
		})
	}

	// an unprotected leveraged position is the single most dangerous failure
	// mode: close it immediately rather than leave it open
	if slOut.err != nil {
		logger.Error("stop-loss failed for %s: %v, closing position", intent.Symbol, slOut.err)

		if _, cerr := v.PlaceMarketOrder(ctx, models.MarketOrder{
			Symbol:     intent.Symbol,
			Side:       exitSide,
			Qty:        filled,
			ReduceOnly: true,
		}); cerr != nil {
			e.notifier.Sendf("🚨 %s: stop-loss AND compensating close failed, position qty=%.8f is UNPROTECTED", intent.Symbol, filled)
			res.Success = false
			return res, &models.CompensationFailure{Symbol: intent.Symbol, Qty: filled, Cause: cerr}
		}

		if err := v.CancelAllOrders(ctx, intent.Symbol); err != nil {
			logger.Warn("cancel leftovers after compensation %s: %v", intent.Symbol, err)
		}

		e.notifier.Sendf("⚠️ %s: stop-loss rejected, position closed at market", intent.Symbol)
		res.Success = false
		res.Protection = models.ProtectionCompensated
		res.TakeProfit = 0
		res.PartialProfits = nil
		return res, nil
	}

	// a missing take-profit is not a capital-at-risk emergency: retry once as
	// a plain reduce-only limit, never close
	if tpOut.err != nil {
		logger.Warn("take-profit failed for %s: %v, retrying as GTC", intent.Symbol, tpOut.err)

		if _, rerr := v.PlaceLimitOrder(ctx, models.LimitOrder{
			Symbol:     intent.Symbol,
			Side:       exitSide,
			Price:      tpPx,
			Qty:        filled,
			ReduceOnly: true,
		}); rerr != nil {
			res.Protection = models.ProtectionDegradedTP
			e.notifier.Sendf("⚠️ %s: take-profit could not be placed, stop-loss is resting", intent.Symbol)
		} else {
			res.TakeProfit = tpPx
		}
	}

	return res, nil
}

// buildPartialLadder walks the configured fractions from entry toward the
// take-profit. The final rung takes the unallocated remainder so truncation
// drift never leaves a residual unclosed quantity.
func buildPartialLadder(intent models.TradeIntent, filled float64, meta models.SymbolMetadata) []models.LimitOrder {
	if len(intent.PartialProfits) == 0 {
		return nil
	}

	exitSide := intent.Side.Opposite()
	orders := make([]models.LimitOrder, 0, len(intent.PartialProfits))

	var allocated float64
	for i, pp := range intent.PartialProfits {
		price := intent.EntryPrice + (intent.TakeProfitPrice-intent.EntryPrice)*pp.Where
		price = helper.TruncateTo(price, meta.PricePrecision)

		var qty float64
		if i == len(intent.PartialProfits)-1 {
			qty = helper.TruncateTo(filled-allocated, meta.QtyPrecision)
		} else {
			qty = helper.TruncateTo(filled*pp.Qty, meta.QtyPrecision)
			allocated += qty
		}
		if qty <= 0 {
			continue
		}

		orders = append(orders, models.LimitOrder{
			Symbol:     intent.Symbol,
			Side:       exitSide,
			Price:      price,
			Qty:        qty,
			ReduceOnly: true,
		})
	}
	return orders
}
