package service

import (
	"context"
	"fmt"
	"math"
	"trade_engine/internal/helper"
	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"

	"golang.org/x/sync/errgroup"
)

type sizingResult struct {
	Qty      float64
	Leverage int
	Meta     models.SymbolMetadata
}

// size converts the intent's risk parameters into an order quantity and
// required leverage. Leverage is set on the venue before returning: margin
// requirement calculation on the venue side depends on it.
func (e *Engine) size(ctx context.Context, v Venue, intent models.TradeIntent) (sizingResult, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.size")
	defer span.Finish()

	var (
		meta   models.SymbolMetadata
		bal    models.Balance
		lastPx float64
		pos    *models.Position
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		meta, err = e.meta.Resolve(gctx, v, intent.Symbol)
		return err
	})
	g.Go(func() (err error) {
		bal, err = v.Balance(gctx, e.settleAsset)
		return err
	})
	g.Go(func() (err error) {
		lastPx, err = v.LastPrice(gctx, intent.Symbol)
		return err
	})
	g.Go(func() (err error) {
		pos, err = v.Position(gctx, intent.Symbol)
		return err
	})
	if err := g.Wait(); err != nil {
		return sizingResult{}, err
	}

	// double-sizing into an existing trade is never allowed
	if pos != nil && !pos.Flat() {
		return sizingResult{}, &models.StateConflictError{Kind: models.ConflictAlreadyInPosition, Symbol: intent.Symbol}
	}

	riskAmount := intent.RiskAmount
	if riskAmount <= 0 {
		riskAmount = bal.Total * intent.RiskPct / 100
	}
	if riskAmount <= 0 {
		return sizingResult{}, &models.ValidationError{Field: "risk", Reason: "resolves to zero risk amount"}
	}

	stopDist := math.Abs(intent.EntryPrice - intent.StoplossPrice)
	qty := helper.TruncateTo(riskAmount/stopDist, meta.QtyPrecision)
	if qty <= 0 {
		return sizingResult{}, &models.ValidationError{Field: "risk", Reason: "quantity is zero at symbol precision"}
	}

	if bal.Available <= 0 {
		return sizingResult{}, fmt.Errorf("asset %s: no available balance: %w", e.settleAsset, models.ErrBalanceUnavailable)
	}

	// +10% buffer against slippage between sizing and fill
	lev := int(math.Ceil(qty * lastPx / bal.Available * e.levBuffer))
	if lev < 1 {
		lev = 1 // leverage 0 is invalid on the venue
	}

	if err := v.SetLeverage(ctx, intent.Symbol, lev); err != nil {
		return sizingResult{}, fmt.Errorf("set leverage: %w", err)
	}

	logger.Info("sized %s: risk=%.4f qty=%.8f lev=%d px=%.8f", intent.Symbol, riskAmount, qty, lev, lastPx)

	return sizingResult{Qty: qty, Leverage: lev, Meta: meta}, nil
}
