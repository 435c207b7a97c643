// linkacct links a venue account: encrypts the API key pair and stores the
// row the engine later resolves by account id.
//
// Usage:
//
//	DATABASE_DSN=... ENCRYPTION_SECRET=... linkacct -user u1 -name main -key K -secret S
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"trade_engine/internal/models"
	"trade_engine/internal/modules/accounts/service"
	"trade_engine/pkg/db"
	"trade_engine/pkg/secrets"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

func main() {
	viper.SetDefault("venue", "binance-futures")
	_ = viper.BindEnv("dsn", "DATABASE_DSN")
	_ = viper.BindEnv("encryption_secret", "ENCRYPTION_SECRET")

	var (
		user      = flag.String("user", "", "owner user id")
		name      = flag.String("name", "", "display name")
		venueName = flag.String("venue", viper.GetString("venue"), "venue identifier")
		apiKey    = flag.String("key", "", "venue API key")
		apiSecret = flag.String("secret", "", "venue API secret")
	)
	flag.Parse()

	if err := run(*user, *name, *venueName, *apiKey, *apiSecret); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(user, name, venueName, apiKey, apiSecret string) error {
	if user == "" || apiKey == "" || apiSecret == "" {
		return errors.New("-user, -key and -secret are required")
	}
	dsn := viper.GetString("dsn")
	if dsn == "" {
		return errors.New("DATABASE_DSN is required")
	}
	secret := viper.GetString("encryption_secret")
	if secret == "" {
		return errors.New("ENCRYPTION_SECRET is required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: dsn})
	if err != nil {
		return errors.Wrap(err, "connect")
	}
	defer pool.Close()

	store := service.NewStore(db.NewPgTxManager(pool), secrets.NewCipher(secret))
	acct, err := store.Create(ctx, models.TradeAccount{
		UserID: user,
		Venue:  venueName,
		Name:   name,
	}, apiKey, apiSecret)
	if err != nil {
		return errors.Wrap(err, "link account")
	}

	out, err := yaml.Marshal(map[string]string{
		"id":         acct.ID,
		"user_id":    acct.UserID,
		"venue":      acct.Venue,
		"name":       acct.Name,
		"created_at": acct.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return errors.Wrap(err, "marshal result")
	}
	fmt.Print(string(out))
	return nil
}
