package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the core runtime configuration for a service instance.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "tachibana-adapter"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // health/status HTTP port
	MetricsAddr string // prometheus listen address, e.g. ":9091"

	DatabaseURL string
	RedisAddr   string // e.g. localhost:6379; empty disables the cache layer
	RedisDB     int
	NATSURL     string // e.g. nats://localhost:4222; empty disables event publishing
	AWSRegion   string // for AWS SDK client

	// Broker account. SecretID, when set, resolves the three credentials from
	// AWS Secrets Manager instead of the environment.
	BrokerBaseURL  string
	BrokerUserID   string
	BrokerPassword string
	BrokerPassword2 string
	SecretID       string
	CredentialTTL  time.Duration // TTL for the resolved-credential cache

	// Polling engine.
	PollInterval  time.Duration // cadence target per cycle
	MaxWorkers    int           // bound on concurrent in-flight cycles
	FetchTimeout  time.Duration // per-request HTTP timeout
	SessionCutoff time.Time     // HH:MM wall-clock close bound (time-of-day only)
	MarketTZ      string        // IANA zone of the trading venue

	// Instrument selection: explicit codes win over the api_id lookup.
	TargetCodes []string
	APIID       string

	// Reference-data listing feed.
	ListingURL string
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	userID := GetEnv("TACHIBANA_USERID", "")

	cfg := &Config{
		ServiceName: GetEnv("SERVICE_NAME", "tachibana-adapter"),
		Env:         GetEnv("ENV", "dev"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),
		Port:        GetEnvInt("PORT", 9020),
		MetricsAddr: GetEnv("METRICS_ADDR", ":9091"),

		DatabaseURL: GetEnv("DATABASE_URL", buildDatabaseURL()),
		RedisAddr:   GetEnv("REDIS_ADDR", ""),
		RedisDB:     GetEnvInt("REDIS_DB", 0),
		NATSURL:     GetEnv("NATS_URL", ""),
		AWSRegion:   GetEnv("AWS_REGION", "ap-northeast-1"),

		BrokerBaseURL:   GetEnv("TACHIBANA_BASE_URL", "https://demo-kabuka.e-shiten.jp/e_api_v4r3/"),
		BrokerUserID:    userID,
		BrokerPassword:  GetEnv("TACHIBANA_PASSWORD", ""),
		BrokerPassword2: GetEnv("TACHIBANA_PASSWORD2", ""),
		SecretID:        GetEnv("TACHIBANA_SECRET_ID", ""),
		CredentialTTL:   GetEnvDuration("CREDENTIAL_TTL", 30*time.Minute),

		PollInterval:  GetEnvDuration("POLL_INTERVAL", 100*time.Millisecond),
		MaxWorkers:    GetEnvInt("MAX_WORKERS", 10),
		FetchTimeout:  GetEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		SessionCutoff: GetEnvTime("SESSION_CUTOFF", "15:00"),
		MarketTZ:      GetEnv("MARKET_TZ", "Asia/Tokyo"),

		TargetCodes: GetEnvList("TARGET_CODES"),
		APIID:       GetEnv("API_ID", userID),

		ListingURL: GetEnv("LISTING_URL", "https://c-eye.co.jp/ipo-list"),
	}

	return cfg
}

// buildDatabaseURL folds the POSTGRES_* quartet into a pgx connection URL for
// deployments that configure the database piecewise rather than as a DSN.
func buildDatabaseURL() string {
	host := GetEnv("POSTGRES_HOST", "localhost")
	db := GetEnv("POSTGRES_DB", "db_kabu")
	user := GetEnv("POSTGRES_USER", "postgres")
	pass := GetEnv("POSTGRES_PASSWORD", "")

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		user, url.QueryEscape(pass), host, GetEnvInt("POSTGRES_PORT", 5432), db)
}

// MarketLocation resolves the configured market timezone, falling back to UTC
// if the zone database lookup fails.
func (c *Config) MarketLocation() *time.Location {
	loc, err := time.LoadLocation(c.MarketTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}
