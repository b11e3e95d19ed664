package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminChatID   int64  `env:"ADMIN_TELEGRAM_CHAT_ID,required"`

	PlategaBaseURL    string `env:"PLATEGA_BASE_URL" envDefault:"https://app.platega.io"`
	PlategaMerchantID string `env:"PLATEGA_MERCHANT_ID,required"`
	PlategaAPIKey     string `env:"PLATEGA_API_KEY,required"`
	// Empty secret disables webhook signature checks; events are then
	// accepted unverified.
	PlategaWebhookSecret string `env:"PLATEGA_WEBHOOK_SECRET"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"https://example.com"`
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":5000"`

	SubscriptionPrice int    `env:"SUBSCRIPTION_PRICE" envDefault:"155"`
	Currency          string `env:"CURRENCY" envDefault:"RUB"`

	// Session store selection: redis when RedisAddr is set, otherwise a
	// flat file when SessionsFile is set, otherwise in-memory only.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionsFile  string        `env:"SESSIONS_FILE"`

	HTTPRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.AdminChatID == 0 {
		return nil, fmt.Errorf("admin chat ID must be non-zero")
	}
	if cfg.SubscriptionPrice <= 0 {
		return nil, fmt.Errorf("subscription price must be positive")
	}

	return &cfg, nil
}
