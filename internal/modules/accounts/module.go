package accounts

import (
	"trade_engine/internal/modules/accounts/service"
	"trade_engine/internal/modules/config"
	"trade_engine/pkg/db"
	"trade_engine/pkg/secrets"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("accounts",
		fx.Provide(
			func(cfg *config.Config) *secrets.Cipher {
				return secrets.NewCipher(cfg.EncryptionSecret)
			},
			func(m *db.PgTxManager) db.TxManager { return m },
			service.NewStore,
		),
	)
}
