package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"trade_engine/internal/models"

	"github.com/bytedance/sonic"
)

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *Client) placeOrder(ctx context.Context, op string, params url.Values) (models.ExecutedOrder, error) {
	// RESULT gives back the executed quantity, which drives protective sizing
	params.Set("newOrderRespType", "RESULT")

	var ack orderAck
	if err := c.signedCall(ctx, op, http.MethodPost, "/fapi/v1/order", params, &ack); err != nil {
		return models.ExecutedOrder{}, err
	}
	return ack.toModel(), nil
}

func (c *Client) PlaceMarketOrder(ctx context.Context, o models.MarketOrder) (models.ExecutedOrder, error) {
	params := url.Values{}
	params.Set("symbol", o.Symbol)
	params.Set("side", string(o.Side))
	params.Set("type", "MARKET")
	params.Set("quantity", fmtFloat(o.Qty))
	if o.ReduceOnly {
		params.Set("reduceOnly", "true")
	}
	return c.placeOrder(ctx, "PlaceMarketOrder", params)
}

func (c *Client) PlaceStopOrder(ctx context.Context, o models.StopOrder) (models.ExecutedOrder, error) {
	params := url.Values{}
	params.Set("symbol", o.Symbol)
	params.Set("side", string(o.Side))
	params.Set("type", "STOP_MARKET")
	params.Set("stopPrice", fmtFloat(o.StopPrice))
	params.Set("quantity", fmtFloat(o.Qty))
	params.Set("workingType", "CONTRACT_PRICE")
	if o.ClosePosition {
		params.Set("closePosition", "true")
	}
	return c.placeOrder(ctx, "PlaceStopOrder", params)
}

func (c *Client) PlaceLimitOrder(ctx context.Context, o models.LimitOrder) (models.ExecutedOrder, error) {
	params := url.Values{}
	params.Set("symbol", o.Symbol)
	params.Set("side", string(o.Side))
	params.Set("type", "LIMIT")
	params.Set("price", fmtFloat(o.Price))
	params.Set("quantity", fmtFloat(o.Qty))
	if o.PostOnly {
		params.Set("timeInForce", "GTX")
	} else {
		params.Set("timeInForce", "GTC")
	}
	if o.ReduceOnly {
		params.Set("reduceOnly", "true")
	}
	return c.placeOrder(ctx, "PlaceLimitOrder", params)
}

// OpenOrders lists resting orders for the symbol.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]models.OpenOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var entries []openOrderEntry
	if err := c.signedCall(ctx, "OpenOrders", http.MethodGet, "/fapi/v1/openOrders", params, &entries); err != nil {
		return nil, err
	}

	res := make([]models.OpenOrder, 0, len(entries))
	for _, e := range entries {
		res = append(res, models.OpenOrder{
			OrderID: e.OrderID,
			Symbol:  e.Symbol,
			Type:    e.OrigType,
			Side:    models.Side(e.Side),
		})
	}
	return res, nil
}

// CancelOrders batch-cancels the given order ids. Callers must not pass an
// empty list: the venue rejects an empty batch.
func (c *Client) CancelOrders(ctx context.Context, symbol string, ids []int64) error {
	idList, _ := sonic.Marshal(ids)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderIdList", string(idList))

	return c.signedCall(ctx, "CancelOrders", http.MethodDelete, "/fapi/v1/batchOrders", params, nil)
}

// CancelAllOrders removes every resting order for the symbol.
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) error {
	params := url.Values{}
	params.Set("symbol", symbol)

	return c.signedCall(ctx, "CancelAllOrders", http.MethodDelete, "/fapi/v1/allOpenOrders", params, nil)
}

// SetLeverage must be called before entry submission: the venue's margin
// requirement depends on it.
func (c *Client) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("leverage", strconv.Itoa(leverage))

	return c.signedCall(ctx, "SetLeverage", http.MethodPost, "/fapi/v1/leverage", params, nil)
}
