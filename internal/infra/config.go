package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv               string
	Port                 string
	DatabaseURL          string
	JWTSecret            string
	CatalogPath          string
	BundleStoragePath    string
	BundleBaseURL        string
	GeoIPDBPath          string
	GatewayBaseURL       string
	GatewayAPIKey        string
	GatewayWebhookSecret string
	CheckoutSuccessURL   string
	CheckoutCancelURL    string
	AuditFeedURL         string
	AllowedOrigins       []string
	DBMaxConns           int
	HTTPReadTimeout      time.Duration
	HTTPWriteTimeout     time.Duration
	HTTPIdleTimeout      time.Duration
	RateLimitPerMin      int
	LedgerAppendRetries  int
	ReconcileAge         time.Duration
	ReconcileInterval    time.Duration
	ReconcileBatchSize   int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CatalogPath:          os.Getenv("CATALOG_PATH"),
		BundleStoragePath:    getEnv("BUNDLE_STORAGE_PATH", "./bundles"),
		GeoIPDBPath:          os.Getenv("GEOIP_DB_PATH"),
		GatewayBaseURL:       getEnv("GATEWAY_BASE_URL", "https://gateway.example.com/v1"),
		GatewayAPIKey:        os.Getenv("GATEWAY_API_KEY"),
		GatewayWebhookSecret: os.Getenv("GATEWAY_WEBHOOK_SECRET"),
		CheckoutSuccessURL:   getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:5173/success.html"),
		CheckoutCancelURL:    getEnv("CHECKOUT_CANCEL_URL", "http://localhost:5173/cancel.html"),
		AuditFeedURL:         os.Getenv("AUDIT_FEED_URL"),
		AllowedOrigins:       splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 10),
		HTTPReadTimeout:      time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:     time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:      time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		LedgerAppendRetries:  getEnvInt("LEDGER_APPEND_RETRIES", 3),
		ReconcileAge:         time.Minute * time.Duration(getEnvInt("RECONCILE_AGE_MINUTES", 30)),
		ReconcileInterval:    time.Minute * time.Duration(getEnvInt("RECONCILE_INTERVAL_MINUTES", 5)),
		ReconcileBatchSize:   getEnvInt("RECONCILE_BATCH_SIZE", 100),
	}

	cfg.BundleBaseURL = getEnv("BUNDLE_BASE_URL", "http://localhost:"+cfg.Port+"/bundles")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
