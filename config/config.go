package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig
	HTTP         ServerConfig
	MySQL        MySQLConfig
	Log          LogConfig
	Jobs         JobsConfig
	AuthorizeNet AuthorizeNetConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type JobsConfig struct {
	WebhookEnsureInterval time.Duration
}

type AuthorizeNetConfig struct {
	ProviderID string

	LiveMode bool

	// APIBaseURL and WebhookBaseURL override the endpoints derived from
	// LiveMode. Used by tests and local tunnels.
	APIBaseURL     string
	WebhookBaseURL string

	// CallbackBaseURL is the public URL Authorize.Net delivers webhook
	// notifications to.
	CallbackBaseURL string

	// SignatureKeyHex selects how the profile signature key is interpreted:
	// false means the key is the raw secret string, true means it is
	// hex-encoded and must be decoded before use. Older merchant
	// configurations use the raw form.
	SignatureKeyHex bool

	HTTPTimeout time.Duration

	SubscribeMaxAttempts       int
	SubscribeRetryDelay        time.Duration
	SubscribeRetryDelaySandbox time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "authorizenet-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Jobs: JobsConfig{
			WebhookEnsureInterval: getMinutesEnv("JOBS_WEBHOOK_ENSURE_INTERVAL_MINUTES", 60*time.Minute),
		},
		AuthorizeNet: AuthorizeNetConfig{
			ProviderID:                 getEnv("ANET_PROVIDER_ID", "authorizenet"),
			LiveMode:                   getBoolEnv("ANET_LIVE_MODE", false),
			APIBaseURL:                 getEnv("ANET_API_BASE_URL", ""),
			WebhookBaseURL:             getEnv("ANET_WEBHOOK_BASE_URL", ""),
			CallbackBaseURL:            getEnv("ANET_CALLBACK_BASE_URL", ""),
			SignatureKeyHex:            getBoolEnv("ANET_SIGNATURE_KEY_HEX", false),
			HTTPTimeout:                getSecondsEnv("ANET_HTTP_TIMEOUT_SECONDS", 30*time.Second),
			SubscribeMaxAttempts:       getIntEnv("ANET_SUBSCRIBE_MAX_ATTEMPTS", 3),
			SubscribeRetryDelay:        getSecondsEnv("ANET_SUBSCRIBE_RETRY_DELAY_SECONDS", time.Second),
			SubscribeRetryDelaySandbox: getSecondsEnv("ANET_SUBSCRIBE_RETRY_DELAY_SANDBOX_SECONDS", 20*time.Second),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
