package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (default driver: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret      string
	JWTExpiry      time.Duration
	BcryptCost     int
	AuthRateLimit  int // requests per client IP on auth endpoints
	AuthRateWindow time.Duration

	// Verification codes
	VerificationCodeTTL     time.Duration
	VerificationMaxAttempts int
	CleanupInterval         time.Duration
	CleanupSchedule         string
	RedisURL                string // optional: schedules cleanup through asynq

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, optional: avatars are disabled without a bucket)
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string
	S3PresignExpiryPublic time.Duration
}

// Load reads .env and the environment. It exits the process when the
// configuration is unusable.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	return cfg
}

// FromEnv builds the config from environment variables only.
func FromEnv() (*Config, error) {
	var missing []string
	required := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "DreamWise"),
		AppEnv:  required("APP_ENV"), // 'development' or 'production'
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/dreamwise.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_txlock=immediate&_time_format=sqlite"),

		// Security
		JWTSecret:      required("JWT_SECRET"),
		JWTExpiry:      envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days
		BcryptCost:     envInt("BCRYPT_COST", 12),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", 15*time.Minute),

		// Verification codes
		VerificationCodeTTL:     envDuration("VERIFICATION_CODE_TTL", 10*time.Minute),
		VerificationMaxAttempts: envInt("VERIFICATION_MAX_ATTEMPTS", 3),
		CleanupInterval:         envDuration("CLEANUP_INTERVAL", time.Hour),
		CleanupSchedule:         envString("CLEANUP_SCHEDULE", "@hourly"),
		RedisURL:                envString("REDIS_URL", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:              envString("S3_REGION", "us-east-1"),
		S3Bucket:              envString("S3_BUCKET", ""),
		S3AccessKey:           envString("S3_ACCESS_KEY", ""),
		S3SecretKey:           envString("S3_SECRET_KEY", ""),
		S3Endpoint:            envString("S3_ENDPOINT", ""),
		S3PresignExpiryPublic: envDuration("S3_PRESIGN_EXPIRY_PUBLIC", 168*time.Hour),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required env vars missing: %s", strings.Join(missing, ", "))
	}

	err := validateLimits(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		err := validateProduction(cfg)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateLimits rejects settings that would lock every client out.
func validateLimits(cfg *Config) error {
	if cfg.AuthRateLimit < 1 {
		return fmt.Errorf("AUTH_RATE_LIMIT must be at least 1, got %d", cfg.AuthRateLimit)
	}
	if cfg.AuthRateWindow <= 0 {
		return fmt.Errorf("AUTH_RATE_WINDOW must be positive, got %s", cfg.AuthRateWindow)
	}
	return nil
}

// validateProduction checks services that development may run without.
func validateProduction(cfg *Config) error {
	if cfg.ResendAPIKey == "" {
		return errors.New("production deployment requires RESEND_API_KEY (set APP_ENV=development to log emails instead)")
	}
	return nil
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AvatarsEnabled reports whether an S3 bucket is configured.
func (c *Config) AvatarsEnabled() bool {
	return c.S3Bucket != ""
}

// Sanitized returns a copy without secrets, safe to log or print.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		DBDriver: c.DBDriver,

		JWTExpiry:      c.JWTExpiry,
		BcryptCost:     c.BcryptCost,
		AuthRateLimit:  c.AuthRateLimit,
		AuthRateWindow: c.AuthRateWindow,

		VerificationCodeTTL:     c.VerificationCodeTTL,
		VerificationMaxAttempts: c.VerificationMaxAttempts,
		CleanupInterval:         c.CleanupInterval,
		CleanupSchedule:         c.CleanupSchedule,

		EmailFrom: c.EmailFrom,

		S3Region:              c.S3Region,
		S3Bucket:              c.S3Bucket,
		S3Endpoint:            c.S3Endpoint,
		S3PresignExpiryPublic: c.S3PresignExpiryPublic,
	}
}
