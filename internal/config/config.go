package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Payment modes select how pending orders get confirmed besides manual operator approval.
const (
	PaymentModeManual    = "manual"
	PaymentModeStatement = "statement"
	PaymentModeInvoice   = "invoice"
)

// Proof modes select what a buyer submits as card proof.
const (
	ProofModeCard  = "card"
	ProofModeLast4 = "last4"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS" envDefault:":8080"`
	DatabaseURI string `env:"DATABASE_URI"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	BotToken       string `env:"BOT_TOKEN"`
	BotUsername    string `env:"BOT_USERNAME" envDefault:"ExamenPdr_bot"`
	TelegramAPIURL string `env:"TELEGRAM_API_URL" envDefault:"https://api.telegram.org"`
	OperatorID     int64  `env:"OPERATOR_ID"`
	AuthSecret     string `env:"AUTH_SECRET"`
	GatewaySecret  string `env:"GATEWAY_SECRET"`
	CardPepper     string `env:"CARD_HASH_PEPPER"`

	PriceSingle int64  `env:"PRICE_SINGLE"`
	PriceBundle int64  `env:"PRICE_ALL"`
	PayoutCard  string `env:"PAYOUT_CARD"`

	PaymentMode   string `env:"PAYMENT_MODE" envDefault:"manual"`
	ProofMode     string `env:"PROOF_MODE" envDefault:"card"`
	LedgerURL     string `env:"LEDGER_URL" envDefault:"https://api.monobank.ua"`
	LedgerToken   string `env:"LEDGER_TOKEN"`
	LedgerAccount string `env:"LEDGER_ACCOUNT" envDefault:"0"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`
	WebhookURL    string `env:"WEBHOOK_URL"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"routeshop.orders"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	DraftTTL          time.Duration `env:"DRAFT_TTL" envDefault:"10m"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"60s"`
	ReconcileWorkers  int           `env:"RECONCILE_WORKERS" envDefault:"4"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	CommissionRate  decimal.Decimal `env:"COMMISSION_RATE" envDefault:"0.10"`
	PayoutThreshold int64           `env:"PAYOUT_THRESHOLD" envDefault:"10000"`
}

const (
	defaultDraftTTL          = 10 * time.Minute
	defaultReconcileInterval = time.Minute
	defaultReconcileWorkers  = 4
	defaultShutdownTimeout   = 10 * time.Second
	defaultPayoutThreshold   = 10000
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], env.ToMap(os.Environ()))
}

func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	fs := flag.NewFlagSet("routeshop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		draftTTLStr        = cfg.DraftTTL.String()
		reconcileStr       = cfg.ReconcileInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		rateStr            = cfg.CommissionRate.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for buyer sessions")
	fs.StringVar(&cfg.BotToken, "bot-token", cfg.BotToken, "Telegram bot token")
	fs.Int64Var(&cfg.OperatorID, "operator", cfg.OperatorID, "Operator chat id")
	fs.Int64Var(&cfg.PriceSingle, "price-single", cfg.PriceSingle, "Single route price in kopiyky")
	fs.Int64Var(&cfg.PriceBundle, "price-all", cfg.PriceBundle, "Bundle price in kopiyky")
	fs.StringVar(&cfg.PayoutCard, "payout-card", cfg.PayoutCard, "Card number buyers pay to")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "Secret for signing actor tokens")
	fs.StringVar(&cfg.PaymentMode, "payment-mode", cfg.PaymentMode, "manual, statement or invoice")
	fs.StringVar(&cfg.ProofMode, "proof-mode", cfg.ProofMode, "card or last4")
	fs.StringVar(&rateStr, "commission", rateStr, "Referral commission rate")
	fs.IntVar(&cfg.ReconcileWorkers, "reconcile-workers", cfg.ReconcileWorkers, "Concurrent ledger event workers")
	fs.StringVar(&draftTTLStr, "draft-ttl", draftTTLStr, "Lifetime of an unpaid checkout draft")
	fs.StringVar(&reconcileStr, "reconcile-interval", reconcileStr, "Interval between ledger polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.DraftTTL, err = time.ParseDuration(draftTTLStr); err != nil {
		return nil, fmt.Errorf("invalid draft ttl: %w", err)
	}

	if cfg.ReconcileInterval, err = time.ParseDuration(reconcileStr); err != nil {
		return nil, fmt.Errorf("invalid reconcile interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.CommissionRate, err = decimal.NewFromString(rateStr); err != nil {
		return nil, fmt.Errorf("invalid commission rate: %w", err)
	}

	if secretFile := environ["AUTH_SECRET_FILE"]; secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read auth secret file: %w", err)
		}
		cfg.AuthSecret = strings.TrimSpace(string(content))
	}

	if cfg.DraftTTL <= 0 {
		cfg.DraftTTL = defaultDraftTTL
	}

	if cfg.ReconcileInterval <= 0 {
		cfg.ReconcileInterval = defaultReconcileInterval
	}

	if cfg.ReconcileWorkers <= 0 {
		cfg.ReconcileWorkers = defaultReconcileWorkers
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.PayoutThreshold <= 0 {
		cfg.PayoutThreshold = defaultPayoutThreshold
	}

	cfg.PaymentMode = strings.ToLower(cfg.PaymentMode)
	cfg.ProofMode = strings.ToLower(cfg.ProofMode)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURI == "":
		return fmt.Errorf("database URI must be provided")
	case c.BotToken == "":
		return fmt.Errorf("bot token must be provided")
	case c.OperatorID == 0:
		return fmt.Errorf("operator id must be provided")
	case c.PriceSingle <= 0:
		return fmt.Errorf("single price must be provided")
	case c.PriceBundle <= 0:
		return fmt.Errorf("bundle price must be provided")
	case c.PayoutCard == "":
		return fmt.Errorf("payout card must be provided")
	case c.AuthSecret == "":
		return fmt.Errorf("auth secret must be provided")
	case c.CardPepper == "":
		return fmt.Errorf("card hash pepper must be provided")
	}

	switch c.PaymentMode {
	case PaymentModeManual:
	case PaymentModeStatement, PaymentModeInvoice:
		if c.LedgerToken == "" {
			return fmt.Errorf("ledger token must be provided for %s payment mode", c.PaymentMode)
		}
	default:
		return fmt.Errorf("unknown payment mode %q", c.PaymentMode)
	}

	if c.ProofMode != ProofModeCard && c.ProofMode != ProofModeLast4 {
		return fmt.Errorf("unknown proof mode %q", c.ProofMode)
	}

	if c.CommissionRate.IsNegative() || c.CommissionRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("commission rate must be within [0, 1]")
	}

	return nil
}

// Automated reports whether orders are also confirmed through the payment ledger.
func (c *Config) Automated() bool {
	return c.PaymentMode == PaymentModeStatement || c.PaymentMode == PaymentModeInvoice
}
