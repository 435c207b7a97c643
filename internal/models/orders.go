package models

// Order requests accepted by the venue adapter. Prices and quantities must
// already be truncated to the symbol's precisions.

type MarketOrder struct {
	Symbol     string
	Side       Side
	Qty        float64
	ReduceOnly bool
}

type StopOrder struct {
	Symbol        string
	Side          Side
	StopPrice     float64
	Qty           float64
	ClosePosition bool
}

type LimitOrder struct {
	Symbol     string
	Side       Side
	Price      float64
	Qty        float64
	ReduceOnly bool
	PostOnly   bool // GTX when set, GTC otherwise
}

// ExecutedOrder is the venue's acknowledgement of a placed order.
type ExecutedOrder struct {
	OrderID   int64
	Symbol    string
	Side      Side
	Type      string
	Status    string
	Price     float64
	StopPrice float64
	OrigQty   float64
	FilledQty float64
	AvgPrice  float64
}

// OpenOrder is a resting order as listed by the venue.
type OpenOrder struct {
	OrderID int64
	Symbol  string
	Type    string
	Side    Side
}
