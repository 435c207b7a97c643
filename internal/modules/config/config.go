package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV   = "CONFIG_FILE"
	databaseDSN         = "DATABASE_DSN"
	encryptionSecretENV = "ENCRYPTION_SECRET"
	telegramTokenENV    = "TELEGRAM_TOKEN"
)

// Config ...
type Config struct {
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Venue struct {
		BaseURL   string `yaml:"base_url"`
		WSBaseURL string `yaml:"ws_base_url"`
		Testnet   bool   `yaml:"testnet"`
		// Account whose user-data stream feeds operator notifications.
		MonitorAccountID string `yaml:"monitor_account_id"`
	} `yaml:"venue"`

	// Settlement asset the account is margined in, e.g. USDT.
	SettleAsset string `yaml:"settle_asset"`

	// Secret the credential cipher derives its key from.
	EncryptionSecret string `yaml:"-"`

	// Symbol metadata cache TTL.
	MetaTTL time.Duration

	// Safety buffer applied to the computed leverage (1.1 => +10% vs slippage).
	LeverageBuffer float64 `yaml:"leverage_buffer"`
}

func NewConfig() (*Config, error) {
	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		SettleAsset:    getenvDefault("SETTLE_ASSET", "USDT"),
		MetaTTL:        durationFromEnv("SYMBOL_META_TTL", "3600s"),
		LeverageBuffer: floatFromEnv("LEVERAGE_BUFFER", 1.1),
	}
	config.Venue.BaseURL = "https://fapi.binance.com"
	config.Venue.WSBaseURL = "wss://fstream.binance.com"

	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	if config.Venue.Testnet {
		config.Venue.BaseURL = "https://testnet.binancefuture.com"
		config.Venue.WSBaseURL = "wss://stream.binancefuture.com"
	}

	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if token := os.Getenv(telegramTokenENV); token != "" {
		config.Telegram.Token = token
	}
	config.EncryptionSecret = getenvRequired(encryptionSecretENV)

	return &config, nil
}

func getenvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("env %s is required", key)
	}
	return v
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
