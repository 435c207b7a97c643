package main

import (
	"context"
	"log"
	"time"

	"trade_engine/internal/modules/accounts"
	accountsvc "trade_engine/internal/modules/accounts/service"
	"trade_engine/internal/modules/config"
	"trade_engine/internal/modules/engine"
	"trade_engine/internal/modules/health"
	healthsvc "trade_engine/internal/modules/health/service"
	"trade_engine/internal/modules/postgres"
	"trade_engine/internal/modules/venue"
	venuesvc "trade_engine/internal/modules/venue/service"
	"trade_engine/internal/notify"
	"trade_engine/pkg/logger"
	"trade_engine/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("trade_engine")
	tracing.SetServiceName("trade_engine")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
			func(cfg *config.Config) notify.Notifier {
				if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != 0 {
					if tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID); err == nil {
						return tg
					}
				}
				return notify.NewStdout()
			},
		),
		config.Module(),
		postgres.Module(),
		accounts.Module(),
		venue.Module(),
		engine.Module(),
		health.Module(),
		fx.Invoke(initTracing),
		fx.Invoke(runUserStream),
		fx.Invoke(func(state *healthsvc.State) { state.SetReady(true) }),
	)
	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}
	<-app.Done()
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) {
	closer := func() {}
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			_, c, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				logger.Warn("jaeger init failed, tracing disabled: %v", err)
				return nil
			}
			closer = c
			return nil
		},
		OnStop: func(_ context.Context) error {
			closer()
			return nil
		},
	})
}

// runUserStream relays order updates of the monitored account to the
// operator: stop fills and expired protective orders show up without anyone
// polling the venue.
func runUserStream(
	lc fx.Lifecycle,
	ctx context.Context,
	cfg *config.Config,
	store *accountsvc.Store,
	f *venue.Factory,
	n notify.Notifier,
	state *healthsvc.State,
) {
	if cfg.Venue.MonitorAccountID == "" {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			creds, err := store.Credentials(ctx, cfg.Venue.MonitorAccountID)
			if err != nil {
				return err
			}
			stream := f.Stream(creds)

			out := make(chan venuesvc.OrderUpdate, 64)
			go stream.Run(ctx, out, state.SetStreamConnected)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case u := <-out:
						state.TouchEvent(time.Now())
						switch u.Status {
						case "FILLED":
							n.Sendf("✅ %s %s %s filled qty=%.8f px=%.8f", u.Symbol, u.OrderType, u.Side, u.FilledQty, u.AvgPrice)
						case "EXPIRED", "REJECTED":
							n.Sendf("⚠️ %s %s %s %s", u.Symbol, u.OrderType, u.Side, u.Status)
						}
					}
				}
			}()
			return nil
		},
	})
}
