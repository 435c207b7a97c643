package models

import "time"

// TradeAccount links a user to one venue account. APIKey/SecretKey are stored
// encrypted; plaintext exists only transiently while a venue client is built.
type TradeAccount struct {
	ID        string
	UserID    string
	Venue     string
	Name      string
	APIKey    string // encrypted at rest
	SecretKey string // encrypted at rest
	CreatedAt time.Time
}

// Credentials is the decrypted key pair. Never logged, never persisted.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Balance is one wallet entry of the futures account.
type Balance struct {
	Asset     string
	Total     float64
	Available float64
}
