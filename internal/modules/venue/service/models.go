package service

import (
	"strconv"
	"trade_engine/internal/models"
)

type positionRiskEntry struct {
	Symbol           string `json:"symbol"`
	PositionAmt      string `json:"positionAmt"`
	EntryPrice       string `json:"entryPrice"`
	Leverage         string `json:"leverage"`
	MarkPrice        string `json:"markPrice"`
	UnRealizedProfit string `json:"unRealizedProfit"`
}

type balanceEntry struct {
	Asset            string `json:"asset"`
	Balance          string `json:"balance"`
	AvailableBalance string `json:"availableBalance"`
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type exchangeInfo struct {
	Symbols []struct {
		Symbol            string `json:"symbol"`
		Status            string `json:"status"`
		QuantityPrecision int    `json:"quantityPrecision"`
		Filters           []struct {
			FilterType string `json:"filterType"`
			TickSize   string `json:"tickSize"`
		} `json:"filters"`
	} `json:"symbols"`
}

type orderAck struct {
	OrderID     int64  `json:"orderId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Price       string `json:"price"`
	StopPrice   string `json:"stopPrice"`
	OrigQty     string `json:"origQty"`
	ExecutedQty string `json:"executedQty"`
	AvgPrice    string `json:"avgPrice"`
}

type openOrderEntry struct {
	OrderID  int64  `json:"orderId"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	OrigType string `json:"origType"`
}

func f(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func (a orderAck) toModel() models.ExecutedOrder {
	return models.ExecutedOrder{
		OrderID:   a.OrderID,
		Symbol:    a.Symbol,
		Side:      models.Side(a.Side),
		Type:      a.Type,
		Status:    a.Status,
		Price:     f(a.Price),
		StopPrice: f(a.StopPrice),
		OrigQty:   f(a.OrigQty),
		FilledQty: f(a.ExecutedQty),
		AvgPrice:  f(a.AvgPrice),
	}
}
