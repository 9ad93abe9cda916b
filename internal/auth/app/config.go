package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/devnet/internal/auth/session"
	"github.com/aussiebroadwan/devnet/pkg/jwtx"
)

const minSecretLen = 32

type Config struct {
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./auth.db)
	DatabaseURL    string // Postgres connection URL, required for postgres

	RedisURL         string // Session store (default: redis://localhost:6379/0)
	SessionKeyPrefix string // Redis key prefix of the per-user session sets

	JWTSecret     string        // Required: HMAC secret, at least 32 bytes outside dev
	JWTAlgorithm  string        // HS256, HS384 or HS512 (default: HS256)
	AccessTTL     time.Duration // Access token lifetime (default: 24h)
	RefreshTTL    time.Duration // Refresh token lifetime (default: 90 days)
	OTPTTL        time.Duration // Email code lifetime (default: 5m)
	BcryptCost    int           // 0 selects bcrypt.DefaultCost
	PepperFile    string        // Password pepper, created on first start (default: ./pepper)
	SecureCookies bool          // Secure flag on OAuth cookies (default: true outside dev)

	MailHost     string // Empty logs mail instead of sending it
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
	MailFromName string
	MailStartTLS bool
	MailWorkers  int
	MailQueue    int

	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	FrontendCallbackURL string
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	return Config{
		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		RedisURL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		SessionKeyPrefix: getEnvOrDefault("SESSION_KEY_PREFIX", session.DefaultKeyPrefix),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTAlgorithm:  strings.ToUpper(getEnvOrDefault("JWT_ALGORITHM", "HS256")),
		AccessTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		OTPTTL:        time.Duration(getEnvIntOrDefault("EMAIL_OTP_EXPIRE_MINUTES", 5)) * time.Minute,
		BcryptCost:    getEnvIntOrDefault("BCRYPT_COST", 0),
		PepperFile:    getEnvOrDefault("PEPPER_FILE", "pepper"),
		SecureCookies: getEnvBoolOrDefault("COOKIE_SECURE", env != "dev"),

		MailHost:     os.Getenv("MAIL_HOST"),
		MailPort:     getEnvIntOrDefault("MAIL_PORT", 587),
		MailUsername: os.Getenv("MAIL_USERNAME"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@devnet.local"),
		MailFromName: getEnvOrDefault("MAIL_FROM_NAME", "devnet"),
		MailStartTLS: getEnvBoolOrDefault("MAIL_STARTTLS", true),
		MailWorkers:  getEnvIntOrDefault("MAIL_WORKERS", 2),
		MailQueue:    getEnvIntOrDefault("MAIL_QUEUE_SIZE", 100),

		GoogleClientID:      os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:  os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:   os.Getenv("GOOGLE_REDIRECT_URL"),
		FrontendCallbackURL: os.Getenv("FRONTEND_CALLBACK_URL"),
	}
}

// GoogleEnabled reports whether any Google setting is present. Validate
// rejects partial configurations.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" || c.GoogleClientSecret != "" || c.GoogleRedirectURL != ""
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			fail("DATABASE_FILE is required for the sqlite driver")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			fail("DATABASE_URL is required for the postgres driver")
		}
	default:
		fail("DATABASE_DRIVER must be sqlite or postgres, got %q", c.DatabaseDriver)
	}

	if c.RedisURL == "" {
		fail("REDIS_URL is required")
	}

	switch {
	case c.JWTSecret == "":
		fail("JWT_SECRET is required")
	case c.Env != "dev" && len(c.JWTSecret) < minSecretLen:
		fail("JWT_SECRET must be at least %d bytes outside dev", minSecretLen)
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		fail("JWT_ALGORITHM must be HS256, HS384 or HS512, got %q", c.JWTAlgorithm)
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		fail("token lifetimes must be positive")
	} else if c.RefreshTTL <= c.AccessTTL {
		fail("REFRESH_TOKEN_TTL must be longer than ACCESS_TOKEN_TTL")
	}
	if c.OTPTTL <= 0 {
		fail("EMAIL_OTP_EXPIRE_MINUTES must be positive")
	}

	if c.MailHost != "" && c.MailFrom == "" {
		fail("MAIL_FROM is required when MAIL_HOST is set")
	}

	if c.GoogleEnabled() {
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" || c.GoogleRedirectURL == "" {
			fail("GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REDIRECT_URL must be set together")
		}
		if c.FrontendCallbackURL == "" {
			fail("FRONTEND_CALLBACK_URL is required for Google sign-in")
		}
	}

	return errors.Join(errs...)
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
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
