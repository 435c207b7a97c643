package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"trade_engine/internal/models"
	"trade_engine/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// fakeVenue records every call and lets a test override any behaviour via
// function fields. Zero value answers with sane defaults.
type fakeVenue struct {
	mu sync.Mutex

	meta      models.SymbolMetadata
	metaErr   error
	metaCalls int

	balance models.Balance
	balErr  error

	price float64

	pos    *models.Position
	posErr error

	open []models.OpenOrder

	marketFn func(o models.MarketOrder) (models.ExecutedOrder, error)
	stopFn   func(o models.StopOrder) (models.ExecutedOrder, error)
	limitFn  func(o models.LimitOrder) (models.ExecutedOrder, error)

	markets       []models.MarketOrder
	stops         []models.StopOrder
	limits        []models.LimitOrder
	cancelBatches [][]int64
	cancelAll     int
	leverages     []int
}

func (f *fakeVenue) Position(_ context.Context, _ string) (*models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, f.posErr
}

func (f *fakeVenue) Balance(_ context.Context, _ string) (models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, f.balErr
}

func (f *fakeVenue) Balances(_ context.Context) ([]models.Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return []models.Balance{f.balance}, f.balErr
}

func (f *fakeVenue) LastPrice(_ context.Context, _ string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price, nil
}

func (f *fakeVenue) SymbolMetadata(_ context.Context, symbol string) (models.SymbolMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metaCalls++
	if f.metaErr != nil {
		return models.SymbolMetadata{}, f.metaErr
	}
	m := f.meta
	if m.Symbol == "" {
		m.Symbol = symbol
	}
	return m, nil
}

func (f *fakeVenue) PlaceMarketOrder(_ context.Context, o models.MarketOrder) (models.ExecutedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markets = append(f.markets, o)
	if f.marketFn != nil {
		return f.marketFn(o)
	}
	return models.ExecutedOrder{
		OrderID:   int64(len(f.markets)),
		Symbol:    o.Symbol,
		Side:      o.Side,
		Status:    "FILLED",
		OrigQty:   o.Qty,
		FilledQty: o.Qty,
		AvgPrice:  f.price,
	}, nil
}

func (f *fakeVenue) PlaceStopOrder(_ context.Context, o models.StopOrder) (models.ExecutedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops = append(f.stops, o)
	if f.stopFn != nil {
		return f.stopFn(o)
	}
	return models.ExecutedOrder{
		OrderID:   int64(1000 + len(f.stops)),
		Symbol:    o.Symbol,
		Side:      o.Side,
		Type:      "STOP_MARKET",
		Status:    "NEW",
		StopPrice: o.StopPrice,
		OrigQty:   o.Qty,
	}, nil
}

func (f *fakeVenue) PlaceLimitOrder(_ context.Context, o models.LimitOrder) (models.ExecutedOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limits = append(f.limits, o)
	if f.limitFn != nil {
		return f.limitFn(o)
	}
	return models.ExecutedOrder{
		OrderID: int64(2000 + len(f.limits)),
		Symbol:  o.Symbol,
		Side:    o.Side,
		Type:    "LIMIT",
		Status:  "NEW",
		Price:   o.Price,
		OrigQty: o.Qty,
	}, nil
}

func (f *fakeVenue) OpenOrders(_ context.Context, _ string) ([]models.OpenOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open, nil
}

func (f *fakeVenue) CancelOrders(_ context.Context, _ string, ids []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(ids) == 0 {
		return fmt.Errorf("empty cancel batch")
	}
	f.cancelBatches = append(f.cancelBatches, ids)
	return nil
}

func (f *fakeVenue) CancelAllOrders(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelAll++
	return nil
}

func (f *fakeVenue) SetLeverage(_ context.Context, _ string, lev int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leverages = append(f.leverages, lev)
	return nil
}

type fakeAccounts struct{}

func (fakeAccounts) Credentials(_ context.Context, _ string) (models.Credentials, error) {
	return models.Credentials{APIKey: "k", SecretKey: "s"}, nil
}

type fakeFactory struct {
	v Venue
}

func (f fakeFactory) Client(_ models.Credentials) Venue { return f.v }

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *fakeNotifier) Send(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *fakeNotifier) Sendf(format string, args ...any) { n.Send(fmt.Sprintf(format, args...)) }
