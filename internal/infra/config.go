package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend selects the persistence implementation for the ledger and queue.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DataBackend string
	DatabaseURL string

	AllowedOrigins []string
	DefaultLocale  string
	GeoIPDBPath    string

	ClaimLease      time.Duration
	ClaimReapEvery  time.Duration
	MaxClaimRetries int
	AllowResubmit   bool

	SMTPAddr string
	SMTPFrom string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DataBackend: getEnv("DATA_BACKEND", BackendMemory),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		DefaultLocale:  getEnv("DEFAULT_LOCALE", "en"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),

		ClaimLease:      getEnvDuration("CLAIM_LEASE", 30*time.Second),
		ClaimReapEvery:  getEnvDuration("CLAIM_REAP_INTERVAL", 10*time.Second),
		MaxClaimRetries: getEnvInt("MAX_CLAIM_RETRIES", 3),
		AllowResubmit:   getEnvBool("QUEUE_ALLOW_RESUBMIT", true),

		SMTPAddr: os.Getenv("SMTP_ADDR"),
		SMTPFrom: getEnv("SMTP_FROM", "no-reply@financetrack.com"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	switch cfg.DataBackend {
	case BackendMemory:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
	}

	if cfg.ClaimLease <= 0 {
		return nil, fmt.Errorf("CLAIM_LEASE must be positive")
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

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
