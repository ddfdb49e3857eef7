package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DatabaseURL         string
	JWTSecret           string
	TokenTTL            time.Duration
	Environment         string
	RunMigrations       bool
	RunSeed             bool
	SeedAdminEmail      string
	SeedAdminPassword   string
	SeedAdminName       string
	SeedDepartmentName  string
	SeedPositionTitle   string
	MaxBodyBytes        int64
	MaxImportBytes      int64
	CycleExpiryInterval time.Duration
	MetricsEnabled      bool
	KafkaBroker         string
	KafkaTopic          string
	LeaderboardLimit    int
	RateLimitPerMinute  int
	ShutdownTimeout     time.Duration
	EmailFrom           string
	EmailEnabled        bool
	SMTPHost            string
	SMTPPort            int
	SMTPUser            string
	SMTPPassword        string
	SMTPUseTLS          bool
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("dotenv load failed", "err", err)
	}
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		Addr:                getEnv("APP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		TokenTTL:            getEnvDuration("TOKEN_TTL", 12*time.Hour),
		Environment:         getEnv("APP_ENV", "development"),
		RunMigrations:       getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:             getEnvBool("RUN_SEED", true),
		SeedAdminEmail:      getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:   getEnv("SEED_ADMIN_PASSWORD", ""),
		SeedAdminName:       getEnv("SEED_ADMIN_NAME", "Administrator"),
		SeedDepartmentName:  getEnv("SEED_DEPARTMENT_NAME", "Administration"),
		SeedPositionTitle:   getEnv("SEED_POSITION_TITLE", "Administrator"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		MaxImportBytes:      int64(getEnvInt("MAX_IMPORT_BYTES", 10485760)),
		CycleExpiryInterval: getEnvDuration("CYCLE_EXPIRY_INTERVAL", 15*time.Minute),
		MetricsEnabled:      getEnvBool("METRICS_ENABLED", true),
		KafkaBroker:         getEnv("KAFKA_BROKER", ""),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "evaluation-events"),
		LeaderboardLimit:    getEnvInt("LEADERBOARD_LIMIT", 5),
		RateLimitPerMinute:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		EmailFrom:           getEnv("EMAIL_FROM", "no-reply@evalportal.local"),
		EmailEnabled:        getEnvBool("EMAIL_ENABLED", false),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvInt("SMTP_PORT", 587),
		SMTPUser:            getEnv("SMTP_USER", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		SMTPUseTLS:          getEnvBool("SMTP_USE_TLS", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		if c.IsProduction() {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
	}
	if c.IsProduction() && c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
		return fmt.Errorf("SEED_ADMIN_PASSWORD must be set or RUN_SEED disabled in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.MaxImportBytes < c.MaxBodyBytes {
		return fmt.Errorf("MAX_IMPORT_BYTES must be at least MAX_BODY_BYTES")
	}
	if c.CycleExpiryInterval < 0 {
		return fmt.Errorf("CYCLE_EXPIRY_INTERVAL must not be negative")
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if c.EmailEnabled && c.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST must be set when EMAIL_ENABLED is true")
	}
	if c.KafkaBroker != "" && strings.TrimSpace(c.KafkaTopic) == "" {
		return fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKER is set")
	}
	return nil
}
