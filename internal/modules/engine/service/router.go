package service

import (
	"context"
	"errors"
	"trade_engine/internal/models"
	"trade_engine/internal/notify"
	"trade_engine/pkg/logger"
)

// Request is one trade intent addressed to a stored account. Resp is
// optional; fire-and-forget callers leave it nil.
type Request struct {
	AccountID string
	Intent    models.TradeIntent
	Resp      chan Response
}

type Response struct {
	Result models.OrderResult
	Err    error
}

// Router consumes requests from the transport boundary and drives the engine.
type Router struct {
	e *Engine
	n notify.Notifier
}

func NewRouter(e *Engine, n notify.Notifier) *Router {
	return &Router{e: e, n: n}
}

func (r *Router) OnIntent(ctx context.Context, req Request) {
	res, err := r.e.Execute(ctx, req.AccountID, req.Intent)

	switch {
	case err == nil && res.Protection == models.ProtectionCompensated:
		logger.Warn("%s %s: compensated by full close", req.Intent.Symbol, req.Intent.Action)
	case err == nil:
		logger.Info("%s %s: done protection=%s qty=%.8f", req.Intent.Symbol, req.Intent.Action, res.Protection, res.Qty)
	default:
		var comp *models.CompensationFailure
		if errors.As(err, &comp) {
			// operators must see this even if the transport is gone
			r.n.Sendf("🚨 %s", comp.Error())
		}
		logger.Error("%s %s: %v", req.Intent.Symbol, req.Intent.Action, err)
	}

	if req.Resp != nil {
		select {
		case req.Resp <- Response{Result: res, Err: err}:
		case <-ctx.Done():
		}
	}
}
