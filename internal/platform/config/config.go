package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	Port         string `validate:"required,numeric"`
	IsProduction bool
	LogLevel     string `validate:"oneof=debug info warn error"`
	// LogFile enables a rotated file sink next to stdout when set.
	LogFile string

	StoreDriver    string `validate:"oneof=postgres sqlite"`
	DatabaseURL    string `validate:"required_if=StoreDriver postgres"`
	SQLitePath     string `validate:"required_if=StoreDriver sqlite"`
	EnableDBCheck  bool
	MigrateOnStart bool

	FeedURL         string        `validate:"required,url"`
	FeedTimeout     time.Duration `validate:"gt=0"`
	FeedUserAgent   string
	FeedRequireDate bool

	ScheduleInterval      time.Duration `validate:"min=1m"`
	SchedulerEnabled      bool
	SchedulerPollInterval time.Duration `validate:"min=1s"`
	SchedulerMaxRetries   int           `validate:"min=0,max=10"`

	JWTSecret       string `validate:"required,min=16"`
	JWTIssuer       string
	AdminAPIKeyHash string
	// RefreshRateLimit uses the limiter's formatted notation, e.g. "5-M".
	RefreshRateLimit    string `validate:"required"`
	ConversionPrecision int32  `validate:"min=0,max=8"`
	CORSAllowOrigins    []string

	KafkaBrokers []string
	KafkaTopic   string `validate:"required_with=KafkaBrokers"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FILE", "")
	viper.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("SQLITE_PATH", "data/rates.db")
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("MIGRATE_ON_START", true)
	viper.SetDefault("FEED_URL", "https://www.tcmb.gov.tr/kurlar/today.xml")
	viper.SetDefault("FEED_TIMEOUT", "15s")
	viper.SetDefault("FEED_USER_AGENT", "paftamobile-rates/1.0")
	viper.SetDefault("FEED_REQUIRE_DATE", false)
	viper.SetDefault("SCHEDULE_INTERVAL", "24h")
	viper.SetDefault("SCHEDULER_ENABLED", true)
	viper.SetDefault("SCHEDULER_POLL_INTERVAL", "1m")
	viper.SetDefault("SCHEDULER_MAX_RETRIES", 3)
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("JWT_ISSUER", "paftamobile")
	viper.SetDefault("ADMIN_API_KEY_HASH", "")
	viper.SetDefault("REFRESH_RATE_LIMIT", "5-M")
	viper.SetDefault("CONVERSION_PRECISION", 2)
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC", "exchange-rates")

	viper.AutomaticEnv()

	cfg := &Config{
		Port:                viper.GetString("PORT"),
		IsProduction:        viper.GetBool("IS_PRODUCTION"),
		LogLevel:            strings.ToLower(viper.GetString("LOG_LEVEL")),
		LogFile:             viper.GetString("LOG_FILE"),
		StoreDriver:         strings.ToLower(viper.GetString("STORE_DRIVER")),
		DatabaseURL:         viper.GetString("PGSQL_URL"),
		SQLitePath:          viper.GetString("SQLITE_PATH"),
		EnableDBCheck:       viper.GetBool("ENABLE_DB_CHECK"),
		MigrateOnStart:      viper.GetBool("MIGRATE_ON_START"),
		FeedURL:             viper.GetString("FEED_URL"),
		FeedUserAgent:       viper.GetString("FEED_USER_AGENT"),
		FeedRequireDate:     viper.GetBool("FEED_REQUIRE_DATE"),
		SchedulerEnabled:    viper.GetBool("SCHEDULER_ENABLED"),
		SchedulerMaxRetries: viper.GetInt("SCHEDULER_MAX_RETRIES"),
		JWTSecret:           viper.GetString("JWT_SECRET"),
		JWTIssuer:           viper.GetString("JWT_ISSUER"),
		AdminAPIKeyHash:     viper.GetString("ADMIN_API_KEY_HASH"),
		RefreshRateLimit:    viper.GetString("REFRESH_RATE_LIMIT"),
		ConversionPrecision: viper.GetInt32("CONVERSION_PRECISION"),
		CORSAllowOrigins:    splitList(viper.GetString("CORS_ALLOW_ORIGINS")),
		KafkaBrokers:        splitList(viper.GetString("KAFKA_BROKERS")),
		KafkaTopic:          viper.GetString("KAFKA_TOPIC"),
	}

	cfg.FeedTimeout = durationOrDefault("FEED_TIMEOUT", 15*time.Second)
	cfg.ScheduleInterval = durationOrDefault("SCHEDULE_INTERVAL", 24*time.Hour)
	cfg.SchedulerPollInterval = durationOrDefault("SCHEDULER_POLL_INTERVAL", time.Minute)

	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.AdminAPIKeyHash == "" {
		log.Println("Warning: ADMIN_API_KEY_HASH not set. Admin routes will reject every request.")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// KafkaEnabled reports whether rate events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
