package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DBSecretName holds the JSON encoded POSTGRES_* overrides in Secrets Manager.
const DBSecretName = "checkout/DB_CREDENTIALS"

// Config holds all configuration for the checkout service.
type Config struct {
	Port   string
	AppEnv string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	RedisURL         string
	BusinessCacheTTL time.Duration

	CheckoutBaseURL     string
	DefaultBusinessID   string
	CheckoutSNSTopicARN string

	AllowedOrigins string
	RequestTimeout time.Duration

	UseSecrets          bool
	CloudWatchEnabled   bool
	CloudWatchNamespace string
	CloudWatchLogGroup  string
}

// SecretSource resolves a secret holding a flat JSON object.
type SecretSource interface {
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// Load reads configuration from the environment, after loading .env if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := durationEnv("BUSINESS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	timeout, err := durationEnv("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:   getEnv("PORT", "4000"),
		AppEnv: getEnv("APP_ENV", "development"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		RedisURL:         os.Getenv("REDIS_URL"),
		BusinessCacheTTL: ttl,

		CheckoutBaseURL:     withTrailingSlash(getEnv("CHECKOUT_BASE_URL", "https://pay.xtopay.co/")),
		DefaultBusinessID:   getEnv("DEFAULT_BUSINESS_ID", "0800000"),
		CheckoutSNSTopicARN: os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),

		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		RequestTimeout: timeout,

		UseSecrets:          boolEnv("AWS_USE_SECRETS"),
		CloudWatchEnabled:   boolEnv("CLOUDWATCH_ENABLED"),
		CloudWatchNamespace: os.Getenv("CLOUDWATCH_NAMESPACE"),
		CloudWatchLogGroup:  os.Getenv("CLOUDWATCH_LOG_GROUP"),
	}
	return cfg, nil
}

// ApplySecrets overrides DB credentials from the secret store. Missing keys
// keep their environment values.
func (c *Config) ApplySecrets(ctx context.Context, src SecretSource) error {
	m, err := src.GetSecretMap(ctx, DBSecretName)
	if err != nil {
		return err
	}
	override := func(dst *string, key string) {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
	override(&c.PostgresUser, "POSTGRES_USER")
	override(&c.PostgresPassword, "POSTGRES_PASSWORD")
	override(&c.PostgresDB, "POSTGRES_DB")
	override(&c.PostgresHost, "POSTGRES_HOST")
	override(&c.PostgresPort, "POSTGRES_PORT")
	return nil
}

// Validate reports incomplete database configuration.
func (c *Config) Validate() error {
	var missing []string
	if c.PostgresUser == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if c.PostgresPassword == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if c.PostgresDB == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if len(missing) > 0 {
		return fmt.Errorf("database config incomplete: %s not set", strings.Join(missing, ", "))
	}
	return nil
}

// PostgresDSN renders the key=value DSN understood by pgx.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func boolEnv(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
