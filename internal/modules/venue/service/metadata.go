package service

import (
	"context"
	"fmt"
	"net/url"
	"trade_engine/internal/helper"
	"trade_engine/internal/models"
)

// SymbolMetadata fetches tick size and quantity precision for one symbol.
// Callers go through the engine's metadata cache; this hits the venue.
func (c *Client) SymbolMetadata(ctx context.Context, symbol string) (models.SymbolMetadata, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var info exchangeInfo
	if err := c.publicCall(ctx, "SymbolMetadata", "/fapi/v1/exchangeInfo", params, &info); err != nil {
		return models.SymbolMetadata{}, err
	}

	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		if s.Status != "" && s.Status != "TRADING" {
			return models.SymbolMetadata{}, fmt.Errorf("symbol %s not trading: %s", symbol, s.Status)
		}

		meta := models.SymbolMetadata{
			Symbol:       s.Symbol,
			QtyPrecision: s.QuantityPrecision,
		}
		for _, flt := range s.Filters {
			if flt.FilterType == "PRICE_FILTER" {
				tick := f(flt.TickSize)
				if tick <= 0 {
					return models.SymbolMetadata{}, fmt.Errorf("symbol %s: bad tickSize %q", symbol, flt.TickSize)
				}
				meta.PricePrecision = helper.CountDecimals(tick)
				return meta, nil
			}
		}
		return models.SymbolMetadata{}, fmt.Errorf("symbol %s: no PRICE_FILTER", symbol)
	}
	return models.SymbolMetadata{}, fmt.Errorf("%s: %w", symbol, models.ErrSymbolNotFound)
}
