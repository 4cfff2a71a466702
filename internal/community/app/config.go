package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Path to SQLite database file (default: ./community.db)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)

	SessionSecret string        // Required in prod: HMAC secret for session tokens
	SessionTTL    time.Duration // Session token lifetime (default: 24h)

	SweepInterval time.Duration // Sweeper interval (default: 5m)
	GracePeriod   time.Duration // Unverified-account grace window (default: 5m)

	// AdminCanGrantAdmin lets a plain admin grant the admin role. Default
	// false: every grant requires superadmin.
	AdminCanGrantAdmin bool

	NotifyPerMinute int // Outbound notification rate limit (default: 60)
	NotifyBurst     int // Outbound notification burst (default: 10)

	// S3 asset store. When Bucket is empty an in-memory store is used,
	// which only makes sense in dev.
	S3Bucket     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	AssetBaseURL string
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("COMMUNITY_DATABASE_FILE", "community.db"),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		SessionSecret: getEnvOrDefault("SESSION_SECRET", "dev-only-secret"),
		SessionTTL:    getEnvDurationOrDefault("SESSION_TTL", 24*time.Hour),

		SweepInterval: getEnvDurationOrDefault("SWEEP_INTERVAL", 5*time.Minute),
		GracePeriod:   getEnvDurationOrDefault("GRACE_PERIOD", 5*time.Minute),

		AdminCanGrantAdmin: getEnvBoolOrDefault("ADMIN_CAN_GRANT_ADMIN", false),

		NotifyPerMinute: getEnvIntOrDefault("NOTIFY_PER_MINUTE", 60),
		NotifyBurst:     getEnvIntOrDefault("NOTIFY_BURST", 10),

		S3Bucket:     os.Getenv("S3_BUCKET"),
		S3Region:     getEnvOrDefault("S3_REGION", "us-east-1"),
		S3Endpoint:   os.Getenv("S3_ENDPOINT"),
		S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
		AssetBaseURL: os.Getenv("ASSET_BASE_URL"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer minutes for backwards compatibility
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
