package service

import (
	"context"
	"trade_engine/internal/models"
)

// Venue is the capability surface the engine is written against. One
// implementation per venue; the orchestration core never imports a concrete
// client. Implementations do not retry.
type Venue interface {
	Position(ctx context.Context, symbol string) (*models.Position, error)
	Balance(ctx context.Context, asset string) (models.Balance, error)
	Balances(ctx context.Context) ([]models.Balance, error)
	LastPrice(ctx context.Context, symbol string) (float64, error)
	SymbolMetadata(ctx context.Context, symbol string) (models.SymbolMetadata, error)
	PlaceMarketOrder(ctx context.Context, o models.MarketOrder) (models.ExecutedOrder, error)
	PlaceStopOrder(ctx context.Context, o models.StopOrder) (models.ExecutedOrder, error)
	PlaceLimitOrder(ctx context.Context, o models.LimitOrder) (models.ExecutedOrder, error)
	OpenOrders(ctx context.Context, symbol string) ([]models.OpenOrder, error)
	CancelOrders(ctx context.Context, symbol string, ids []int64) error
	CancelAllOrders(ctx context.Context, symbol string) error
	SetLeverage(ctx context.Context, symbol string, leverage int) error
}

// ClientFactory builds a Venue bound to one account from decrypted
// credentials. The plaintext pair lives only inside the returned client.
type ClientFactory interface {
	Client(creds models.Credentials) Venue
}

// Accounts resolves stored trade accounts into decrypted credentials.
type Accounts interface {
	Credentials(ctx context.Context, accountID string) (models.Credentials, error)
}
