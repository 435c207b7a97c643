package service

import (
	"context"
	"fmt"
	"trade_engine/internal/models"
	"trade_engine/pkg/db"
	"trade_engine/pkg/secrets"

	"github.com/jackc/pgx/v5"
)

// Store persists linked trade accounts. API keys are encrypted before they
// touch the database and decrypted only in Credentials.
type Store struct {
	db     db.TxManager
	cipher *secrets.Cipher
}

func NewStore(txm db.TxManager, cipher *secrets.Cipher) *Store {
	return &Store{
		db:     txm,
		cipher: cipher,
	}
}

// Create links a new account. Plaintext keys are encrypted here and never
// stored or returned.
func (s *Store) Create(
	ctx context.Context,
	acct models.TradeAccount,
	apiKey, secretKey string,
) (out models.TradeAccount, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("accounts.Create: %w", err)
		}
	}()

	encKey, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return out, err
	}
	encSecret, err := s.cipher.Encrypt(secretKey)
	if err != nil {
		return out, err
	}

	out = acct
	out.APIKey = encKey
	out.SecretKey = encSecret

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctxTx,
			`INSERT INTO trade_accounts (user_id, venue, name, api_key, secret_key)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			acct.UserID, acct.Venue, acct.Name, encKey, encSecret,
		).Scan(&out.ID, &out.CreatedAt)
	})
	if err != nil {
		return models.TradeAccount{}, err
	}
	return out, nil
}

// List returns the user's accounts with keys still encrypted.
func (s *Store) List(ctx context.Context, userID string) (out []models.TradeAccount, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("accounts.List: %w", err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		rows, err := tx.Query(ctxTx,
			`SELECT id, user_id, venue, name, api_key, secret_key, created_at
			 FROM trade_accounts WHERE user_id = $1 ORDER BY created_at`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var a models.TradeAccount
			if err := rows.Scan(&a.ID, &a.UserID, &a.Venue, &a.Name, &a.APIKey, &a.SecretKey, &a.CreatedAt); err != nil {
				return err
			}
			out = append(out, a)
		}
		return rows.Err()
	})
	return out, err
}

// Get fetches one account scoped to its owner.
func (s *Store) Get(ctx context.Context, userID, accountID string) (out models.TradeAccount, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("accounts.Get: %w", err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctxTx,
			`SELECT id, user_id, venue, name, api_key, secret_key, created_at
			 FROM trade_accounts WHERE id = $1 AND user_id = $2`,
			accountID, userID,
		).Scan(&out.ID, &out.UserID, &out.Venue, &out.Name, &out.APIKey, &out.SecretKey, &out.CreatedAt)
	})
	return out, err
}

// Rename updates the display name only; keys are immutable once linked.
func (s *Store) Rename(ctx context.Context, userID, accountID, name string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("accounts.Rename: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctxTx,
			`UPDATE trade_accounts SET name = $1 WHERE id = $2 AND user_id = $3`,
			name, accountID, userID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

// Delete unlinks the account, destroying the stored key material.
func (s *Store) Delete(ctx context.Context, userID, accountID string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("accounts.Delete: %w", err)
		}
	}()

	return s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctxTx,
			`DELETE FROM trade_accounts WHERE id = $1 AND user_id = $2`,
			accountID, userID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

// Credentials decrypts the key pair for venue client construction. Callers
// must not retain the result beyond one orchestrated operation.
func (s *Store) Credentials(ctx context.Context, accountID string) (creds models.Credentials, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("accounts.Credentials: %w", err)
		}
	}()

	var encKey, encSecret string
	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(ctxTx,
			`SELECT api_key, secret_key FROM trade_accounts WHERE id = $1`,
			accountID,
		).Scan(&encKey, &encSecret)
	})
	if err != nil {
		return creds, err
	}

	if creds.APIKey, err = s.cipher.Decrypt(encKey); err != nil {
		return models.Credentials{}, err
	}
	if creds.SecretKey, err = s.cipher.Decrypt(encSecret); err != nil {
		return models.Credentials{}, err
	}
	return creds, nil
}
