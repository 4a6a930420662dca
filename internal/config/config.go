package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Assistant    AssistantConfig
	Live         LiveConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	ProjectID             string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis fan-out.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level         string
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
	MaxAgeDays    int
	CompressFiles bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// AssistantConfig points at an OpenAI-compatible chat completions endpoint.
type AssistantConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	TimeoutSeconds int
	MaxHistory     int
}

// LiveConfig tunes the live-query streams.
type LiveConfig struct {
	HeartbeatSeconds int
	ChannelPrefix    string
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			ProjectID:             getEnv("APP_PROJECT_ID", "support-desk"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			FilePath:      os.Getenv("LOG_FILE"),
			MaxSizeMB:     getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups:    getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays:    getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 14),
			CompressFiles: getEnvAsBool("LOG_FILE_COMPRESS", true),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", devJWTSecret),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Assistant: AssistantConfig{
			BaseURL:        getEnv("ASSISTANT_BASE_URL", "https://api.openai.com/v1"),
			APIKey:         os.Getenv("ASSISTANT_API_KEY"),
			Model:          getEnv("ASSISTANT_MODEL", "gpt-4o-mini"),
			TimeoutSeconds: getEnvAsInt("ASSISTANT_TIMEOUT_SECONDS", 30),
			MaxHistory:     getEnvAsInt("ASSISTANT_MAX_HISTORY", 20),
		},
		Live: LiveConfig{
			HeartbeatSeconds: getEnvAsInt("LIVE_HEARTBEAT_SECONDS", 15),
			ChannelPrefix:    getEnv("LIVE_CHANNEL_PREFIX", "supportdesk"),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
}

// Validate rejects configurations that are unsafe outside development.
func (c *Config) Validate() error {
	if c.App.ProjectID == "" {
		return errors.New("config: APP_PROJECT_ID is required")
	}
	if c.App.Env == "production" {
		if c.Auth.JWTSecret == devJWTSecret || len(c.Auth.JWTSecret) < 32 {
			return errors.New("config: in production AUTH_JWT_SECRET must be set to at least 32 characters")
		}
		if c.Postgres.DSN == "" {
			return errors.New("config: in production POSTGRES_DSN is required")
		}
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the per-call deadline for the assistant.
func (a AssistantConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Enabled reports whether an API key was configured.
func (a AssistantConfig) Enabled() bool {
	return a.APIKey != ""
}

// Heartbeat returns the SSE keep-alive interval.
func (l LiveConfig) Heartbeat() time.Duration {
	if l.HeartbeatSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(l.HeartbeatSeconds) * time.Second
}

// Channel namespaces the change feed per project and environment.
func (c *Config) Channel() string {
	return fmt.Sprintf("%s:%s:%s:changes", c.Live.ChannelPrefix, c.App.ProjectID, c.App.Env)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
