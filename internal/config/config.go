package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kiwari-pos/register/internal/money"
	"github.com/kiwari-pos/register/internal/payment"
	"github.com/kiwari-pos/register/internal/pricing"
	"github.com/kiwari-pos/register/internal/preorder"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	Register RegisterConfig
	PreOrder PreOrderConfig
	Kafka    KafkaConfig
	Log      LogConfig
	CORS     CORSConfig

	// EnvFile is the .env file that was read, empty when none was found.
	EnvFile string
}

type RegisterConfig struct {
	TaxRate          decimal.Decimal
	StrictCashAmount bool
	ClearOnComplete  bool
	QuickAddAmounts  []decimal.Decimal
	CurrencySuffix   string
}

type PreOrderConfig struct {
	// StatusURL is the base URL of the pre-order service. Empty disables
	// pre-order tracking.
	StatusURL    string
	PollInterval time.Duration
}

type KafkaConfig struct {
	// Brokers is a comma separated list. Empty disables publishing.
	Brokers string
	Topic   string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load reads envFile (when it exists) and the process environment, which
// wins over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8081")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-in-production")
	v.SetDefault("TAX_RATE", pricing.DefaultTaxRate.String())
	v.SetDefault("STRICT_CASH_AMOUNT", false)
	v.SetDefault("CLEAR_ORDER_ON_COMPLETE", false)
	v.SetDefault("QUICK_ADD_AMOUNTS", joinAmounts(payment.DefaultQuickAddAmounts))
	v.SetDefault("CURRENCY_SUFFIX", "₫")
	v.SetDefault("PREORDER_STATUS_URL", "")
	v.SetDefault("PREORDER_POLL_INTERVAL", preorder.DefaultInterval)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "register.payments")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	cfg := &Config{}
	if envFile != "" {
		if err := v.ReadInConfig(); err == nil {
			cfg.EnvFile = v.ConfigFileUsed()
		}
	}

	taxRate, err := decimal.NewFromString(strings.TrimSpace(v.GetString("TAX_RATE")))
	if err != nil || taxRate.IsNegative() {
		return nil, fmt.Errorf("TAX_RATE: invalid rate %q", v.GetString("TAX_RATE"))
	}

	quickAdds, err := parseAmounts(v.GetString("QUICK_ADD_AMOUNTS"))
	if err != nil {
		return nil, fmt.Errorf("QUICK_ADD_AMOUNTS: %w", err)
	}

	interval := v.GetDuration("PREORDER_POLL_INTERVAL")
	if interval <= 0 {
		return nil, fmt.Errorf("PREORDER_POLL_INTERVAL: must be positive, got %q", v.GetString("PREORDER_POLL_INTERVAL"))
	}

	cfg.Port = v.GetString("PORT")
	cfg.DatabaseURL = v.GetString("DATABASE_URL")
	cfg.JWTSecret = v.GetString("JWT_SECRET")
	cfg.Register = RegisterConfig{
		TaxRate:          taxRate,
		StrictCashAmount: v.GetBool("STRICT_CASH_AMOUNT"),
		ClearOnComplete:  v.GetBool("CLEAR_ORDER_ON_COMPLETE"),
		QuickAddAmounts:  quickAdds,
		CurrencySuffix:   v.GetString("CURRENCY_SUFFIX"),
	}
	cfg.PreOrder = PreOrderConfig{
		StatusURL:    v.GetString("PREORDER_STATUS_URL"),
		PollInterval: interval,
	}
	cfg.Kafka = KafkaConfig{
		Brokers: v.GetString("KAFKA_BROKERS"),
		Topic:   v.GetString("KAFKA_TOPIC"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Pretty: v.GetBool("LOG_PRETTY"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
	return cfg, nil
}

// parseAmounts reads a comma separated list such as "10k,20k,50k".
func parseAmounts(s string) ([]decimal.Decimal, error) {
	var out []decimal.Decimal
	for _, part := range splitList(s) {
		d, err := money.ParseAmount(part)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", part, err)
		}
		if !d.IsPositive() {
			return nil, errors.New("amounts must be positive")
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one amount is required")
	}
	return out, nil
}

func joinAmounts(amounts []decimal.Decimal) string {
	parts := make([]string, len(amounts))
	for i, a := range amounts {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
