package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Payout    PayoutConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Jobs      JobsConfig
	Log       LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string // public storefront URL, used for referral links
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// RedisConfig holds Redis connection settings.
// When disabled, locks and idempotency fall back to process memory.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

// AuthConfig holds settings for verifying identity provider tokens
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// StorageConfig holds image store settings
type StorageConfig struct {
	Provider        string // gcs, s3
	Bucket          string
	CredentialsFile string // gcs only
	Endpoint        string // s3 only
	Region          string // s3 only
	AccessKey       string // s3 only
	SecretKey       string // s3 only
	PublicBaseURL   string
	ThumbnailWidth  int
}

// PayoutConfig selects how approved withdrawals are paid out
type PayoutConfig struct {
	Provider        string // manual, omise
	OmisePublicKey  string
	OmiseSecretKey  string
	DefaultBankCode string
}

// CORSConfig holds allowed origins for the storefront
type CORSConfig struct {
	AllowOrigins []string
}

// RateLimitConfig holds per-IP limits for public mutation routes
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// JobsConfig holds cron schedules
type JobsConfig struct {
	Enabled          bool
	MembershipExpiry string
	CartCleanup      string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// Load loads configuration from .env, config.toml and DSH_ prefixed environment variables.
// Priority (highest to lowest):
// 1. Environment variables (e.g. DSH_MONGO_URI)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DSH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongo.uri"),
			Database: v.GetString("mongo.database"),
			Timeout:  v.GetDuration("mongo.timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			CacheTTL: v.GetDuration("redis.cache_ttl"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
		},
		Storage: StorageConfig{
			Provider:        v.GetString("storage.provider"),
			Bucket:          v.GetString("storage.bucket"),
			CredentialsFile: v.GetString("storage.credentials_file"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			AccessKey:       v.GetString("storage.access_key"),
			SecretKey:       v.GetString("storage.secret_key"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
			ThumbnailWidth:  v.GetInt("storage.thumbnail_width"),
		},
		Payout: PayoutConfig{
			Provider:        v.GetString("payout.provider"),
			OmisePublicKey:  v.GetString("payout.omise_public_key"),
			OmiseSecretKey:  v.GetString("payout.omise_secret_key"),
			DefaultBankCode: v.GetString("payout.default_bank_code"),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(v.GetString("cors.allow_origins")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("ratelimit.rps"),
			Burst:             v.GetInt("ratelimit.burst"),
		},
		Jobs: JobsConfig{
			Enabled:          v.GetBool("jobs.enabled"),
			MembershipExpiry: v.GetString("jobs.membership_expiry"),
			CartCleanup:      v.GetString("jobs.cart_cleanup"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dropship-hub")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:5173")

	v.SetDefault("mongo.database", "dropship_hub")
	v.SetDefault("mongo.timeout", 10*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)

	v.SetDefault("storage.provider", "gcs")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.thumbnail_width", 600)

	v.SetDefault("payout.provider", "manual")
	v.SetDefault("payout.default_bank_code", "bbl")

	v.SetDefault("cors.allow_origins", "http://localhost:5173")

	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 5)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.membership_expiry", "0 */6 * * *")
	v.SetDefault("jobs.cart_cleanup", "30 3 * * *")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return errors.New("mongo.uri is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	switch c.Storage.Provider {
	case "gcs", "s3":
	default:
		return fmt.Errorf("unknown storage provider %q", c.Storage.Provider)
	}
	switch c.Payout.Provider {
	case "manual":
	case "omise":
		if c.Payout.OmisePublicKey == "" || c.Payout.OmiseSecretKey == "" {
			return errors.New("omise payout requires payout.omise_public_key and payout.omise_secret_key")
		}
	default:
		return fmt.Errorf("unknown payout provider %q", c.Payout.Provider)
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("ratelimit.rps and ratelimit.burst must be positive")
	}
	return nil
}
