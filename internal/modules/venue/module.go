package venue

import (
	"trade_engine/internal/models"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/modules/venue/service"

	"go.uber.org/fx"
)

// Factory builds per-account clients. Credentials live only inside the
// returned client; the factory never stores them.
type Factory struct {
	baseURL   string
	wsBaseURL string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		baseURL:   cfg.Venue.BaseURL,
		wsBaseURL: cfg.Venue.WSBaseURL,
	}
}

func (f *Factory) Client(creds models.Credentials) *service.Client {
	return service.NewClient(f.baseURL, creds)
}

func (f *Factory) Stream(creds models.Credentials) *service.Stream {
	return service.NewStream(f.Client(creds), f.wsBaseURL)
}

func Module() fx.Option {
	return fx.Module("venue",
		fx.Provide(
			NewFactory,
		),
	)
}
