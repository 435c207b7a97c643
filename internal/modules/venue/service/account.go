package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"trade_engine/internal/models"
)

// Position returns the current exposure for the symbol, or nil when flat.
func (c *Client) Position(ctx context.Context, symbol string) (*models.Position, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var entries []positionRiskEntry
	if err := c.signedCall(ctx, "Position", http.MethodGet, "/fapi/v2/positionRisk", params, &entries); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Symbol != symbol {
			continue
		}
		qty := f(e.PositionAmt)
		if qty == 0 {
			continue
		}
		lev, _ := strconv.Atoi(e.Leverage)
		return &models.Position{
			Symbol:     e.Symbol,
			Qty:        qty,
			EntryPrice: f(e.EntryPrice),
			Leverage:   lev,
			MarkPrice:  f(e.MarkPrice),
			UnrealPnl:  f(e.UnRealizedProfit),
		}, nil
	}
	return nil, nil
}

// Balance returns the wallet entry for the given asset.
func (c *Client) Balance(ctx context.Context, asset string) (models.Balance, error) {
	var entries []balanceEntry
	if err := c.signedCall(ctx, "Balance", http.MethodGet, "/fapi/v2/balance", nil, &entries); err != nil {
		return models.Balance{}, err
	}

	for _, e := range entries {
		if e.Asset == asset {
			return models.Balance{
				Asset:     e.Asset,
				Total:     f(e.Balance),
				Available: f(e.AvailableBalance),
			}, nil
		}
	}
	return models.Balance{}, fmt.Errorf("asset %s: %w", asset, models.ErrBalanceUnavailable)
}

// Balances returns all non-zero wallet entries, for account summaries.
func (c *Client) Balances(ctx context.Context) ([]models.Balance, error) {
	var entries []balanceEntry
	if err := c.signedCall(ctx, "Balances", http.MethodGet, "/fapi/v2/balance", nil, &entries); err != nil {
		return nil, err
	}

	res := make([]models.Balance, 0, len(entries))
	for _, e := range entries {
		if f(e.Balance) == 0 {
			continue
		}
		res = append(res, models.Balance{
			Asset:     e.Asset,
			Total:     f(e.Balance),
			Available: f(e.AvailableBalance),
		})
	}
	return res, nil
}

// LastPrice returns the latest traded price for the symbol.
func (c *Client) LastPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var t tickerPrice
	if err := c.publicCall(ctx, "LastPrice", "/fapi/v1/ticker/price", params, &t); err != nil {
		return 0, err
	}
	px := f(t.Price)
	if px <= 0 {
		return 0, fmt.Errorf("LastPrice %s: bad price %q", symbol, t.Price)
	}
	return px, nil
}
