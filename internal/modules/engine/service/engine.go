package service

import (
	"context"
	"fmt"
	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/notify"
	"trade_engine/pkg/tracing"
)

// Engine turns validated trade intents into sequences of venue orders while
// guaranteeing a position is never left unprotected.
type Engine struct {
	accounts Accounts
	clients  ClientFactory
	meta     *MetaCache
	notifier notify.Notifier

	settleAsset string
	levBuffer   float64
}

func NewEngine(cfg *config.Config, accounts Accounts, clients ClientFactory, notifier notify.Notifier) *Engine {
	levBuffer := cfg.LeverageBuffer
	if levBuffer <= 0 {
		levBuffer = 1.1
	}
	return &Engine{
		accounts:    accounts,
		clients:     clients,
		meta:        NewMetaCache(cfg.MetaTTL),
		notifier:    notifier,
		settleAsset: cfg.SettleAsset,
		levBuffer:   levBuffer,
	}
}

// Execute validates the intent, builds a venue client for the account and
// dispatches by action. Credentials are decrypted for the duration of this
// call only.
func (e *Engine) Execute(ctx context.Context, accountID string, intent models.TradeIntent) (models.OrderResult, error) {
	span, ctx := tracing.StartSpan(ctx, "engine.Execute")
	defer span.Finish()
	span.SetTag("symbol", intent.Symbol)
	span.SetTag("action", string(intent.Action))

	if err := intent.Validate(); err != nil {
		return models.OrderResult{}, err
	}

	creds, err := e.accounts.Credentials(ctx, accountID)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("load credentials: %w", err)
	}
	v := e.clients.Client(creds)

	switch intent.Action {
	case models.ActionEntry:
		return e.entry(ctx, v, intent)
	case models.ActionExit:
		return e.exit(ctx, v, intent)
	case models.ActionMoveStoploss:
		return e.moveStop(ctx, v, intent)
	}
	return models.OrderResult{}, &models.ValidationError{Field: "action", Reason: "unknown action"}
}

// AccountSummary reports non-zero balances for the account.
func (e *Engine) AccountSummary(ctx context.Context, accountID string) ([]models.Balance, error) {
	creds, err := e.accounts.Credentials(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	v := e.clients.Client(creds)

	return v.Balances(ctx)
}
