package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	GRPCPort      string
	IsProduction  bool
	EnableDBCheck bool
	RunMigrations bool
	LogLevel      string

	RedisURL        string
	BalanceCacheTTL time.Duration

	TxMaxAttempts       int
	TxRetryBaseDelay    time.Duration
	TxRetryMaxDelay     time.Duration
	FastTransferTimeout time.Duration

	// JWTSecret enables bearer authentication on /ledger when set.
	JWTSecret string
	JWTIssuer string

	RateLimit          string
	CORSAllowedOrigins []string

	OTLPEndpoint string
	ServiceName  string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GRPC_PORT", "9090")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("BALANCE_CACHE_TTL", "5m")
	v.SetDefault("TX_MAX_ATTEMPTS", 5)
	v.SetDefault("TX_RETRY_BASE_DELAY", "10ms")
	v.SetDefault("TX_RETRY_MAX_DELAY", "500ms")
	v.SetDefault("FAST_TRANSFER_TIMEOUT", "3s")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "banking-ledger")
	v.SetDefault("RATE_LIMIT", "1000-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("SERVICE_NAME", "banking-ledger")
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabaseURL:   v.GetString("PGSQL_URL"),
		Port:          v.GetString("PORT"),
		GRPCPort:      v.GetString("GRPC_PORT"),
		IsProduction:  v.GetBool("IS_PRODUCTION"),
		EnableDBCheck: v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		RedisURL:      v.GetString("REDIS_URL"),
		TxMaxAttempts: v.GetInt("TX_MAX_ATTEMPTS"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		JWTIssuer:     v.GetString("JWT_ISSUER"),
		RateLimit:     v.GetString("RATE_LIMIT"),
		OTLPEndpoint:  v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:   v.GetString("SERVICE_NAME"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	if cfg.JWTSecret == "" && cfg.IsProduction {
		log.Println("Warning: JWT_SECRET not set in production. /ledger is served without authentication.")
	}
	if cfg.TxMaxAttempts < 1 {
		return nil, fmt.Errorf("TX_MAX_ATTEMPTS must be at least 1, got %d", cfg.TxMaxAttempts)
	}

	var err error
	if cfg.BalanceCacheTTL, err = duration(v, "BALANCE_CACHE_TTL"); err != nil {
		return nil, err
	}
	if cfg.TxRetryBaseDelay, err = duration(v, "TX_RETRY_BASE_DELAY"); err != nil {
		return nil, err
	}
	if cfg.TxRetryMaxDelay, err = duration(v, "TX_RETRY_MAX_DELAY"); err != nil {
		return nil, err
	}
	if cfg.FastTransferTimeout, err = duration(v, "FAST_TRANSFER_TIMEOUT"); err != nil {
		return nil, err
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o := strings.TrimSpace(origin); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s (%q): %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
