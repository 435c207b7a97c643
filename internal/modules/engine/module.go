package engine

import (
	"context"
	"trade_engine/internal/models"
	accountsvc "trade_engine/internal/modules/accounts/service"
	"trade_engine/internal/modules/engine/service"
	"trade_engine/internal/modules/venue"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			func(f *venue.Factory) service.ClientFactory {
				return clientFactory{f: f}
			},
			func(s *accountsvc.Store) service.Accounts { return s },
			service.NewEngine,
			service.NewRouter,
			func() chan service.Request {
				return make(chan service.Request, 16)
			},
		),
		fx.Invoke(func(
			lc fx.Lifecycle,
			r *service.Router,
			reqs chan service.Request,
			ctx context.Context,
		) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						for {
							select {
							case <-ctx.Done():
								return
							case req := <-reqs:
								r.OnIntent(ctx, req)
							}
						}
					}()
					return nil
				},
			})
		}),
	)
}

type clientFactory struct {
	f *venue.Factory
}

func (c clientFactory) Client(creds models.Credentials) service.Venue {
	return c.f.Client(creds)
}
