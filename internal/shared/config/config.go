package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// Config holds every setting the service reads from the environment.
type Config struct {
	AppEnv   string
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MigrationsPath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	NatsURL string

	GeminiAPIKey string
	GeminiModel  string

	FetchTimeout       time.Duration
	ExtractionCacheTTL time.Duration

	PaymentGatewayURL string
	PaymentGatewayKey string
	PaymentStorePath  string

	AuctionCloseInterval   time.Duration
	AuctionExtensionWindow time.Duration
}

// LoadEnv loads a .env file once, if there is one. Missing files are ignored.
func LoadEnv() {
	loadEnvOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Load builds the Config from the environment, applying defaults.
func Load() *Config {
	LoadEnv()
	return &Config{
		AppEnv:   GetEnv("APP_ENV", "development"),
		HTTPAddr: GetEnv("HTTP_ADDR", ":9000"),

		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD", ""),
		DBName:     GetEnv("DB_NAME", "numismatic_market"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		MigrationsPath: GetEnv("MIGRATIONS_PATH", "file://internal/shared/db/migrations/sql"),

		RedisAddr:     GetEnv("REDIS_ADDR", ""),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),

		NatsURL: GetEnv("NATS_URL", ""),

		GeminiAPIKey: GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:  GetEnv("GEMINI_MODEL", "gemini-2.0-flash-001"),

		FetchTimeout:       GetEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		ExtractionCacheTTL: GetEnvDuration("EXTRACTION_CACHE_TTL", 6*time.Hour),

		PaymentGatewayURL: GetEnv("PAYMENT_GATEWAY_URL", ""),
		PaymentGatewayKey: GetEnv("PAYMENT_GATEWAY_KEY", ""),
		PaymentStorePath:  GetEnv("PAYMENT_STORE_PATH", "data/payments.db"),

		AuctionCloseInterval:   GetEnvDuration("AUCTION_CLOSE_INTERVAL", 30*time.Second),
		AuctionExtensionWindow: GetEnvDuration("AUCTION_EXTENSION_WINDOW", 2*time.Minute),
	}
}

// PostgresDSN renders the connection string used by pgx and golang-migrate.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetEnv returns the value of key or fallback when it is unset or empty.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// GetEnvInt parses key as an int, falling back on absence or parse errors.
func GetEnvInt(key string, fallback int) int {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GetEnvDuration parses key with time.ParseDuration ("30s", "2m").
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := GetEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
