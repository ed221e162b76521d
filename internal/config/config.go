package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Config aggregates runtime configuration for the portal.
type Config struct {
	App     AppConfig
	Backend BackendConfig
	Redis   RedisConfig
	Logger  LoggerConfig
	Session SessionConfig
	Views   ViewConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	MaxUploadMB           int
}

// BackendConfig points the API gateway client at the helpdesk REST API.
type BackendConfig struct {
	BaseURL              string
	TimeoutSeconds       int
	ExportTimeoutSeconds int
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// SessionConfig controls how portal sessions are stored and addressed.
type SessionConfig struct {
	Store      string
	CookieName string
	KeyPrefix  string
	TTLMinutes int
	Secure     bool
}

// ViewConfig bounds per-session view state.
type ViewConfig struct {
	NotificationInbox    int
	UploadDir            string
	SweepIntervalSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
// Extra env files are loaded before the default .env; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "3000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			MaxUploadMB:           getEnvAsInt("APP_MAX_UPLOAD_MB", 20),
		},
		Backend: BackendConfig{
			BaseURL:              strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://127.0.0.1:5000/api"), "/"),
			TimeoutSeconds:       getEnvAsInt("BACKEND_TIMEOUT_SECONDS", 15),
			ExportTimeoutSeconds: getEnvAsInt("BACKEND_EXPORT_TIMEOUT_SECONDS", 120),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			Store:      strings.ToLower(getEnv("SESSION_STORE", SessionStoreRedis)),
			CookieName: getEnv("SESSION_COOKIE_NAME", "helpdesk_session"),
			KeyPrefix:  getEnv("SESSION_KEY_PREFIX", "helpdesk:session:"),
			TTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 12*60),
			Secure:     getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Views: ViewConfig{
			NotificationInbox:    getEnvAsInt("VIEW_NOTIFICATION_INBOX", 20),
			UploadDir:            getEnv("VIEW_UPLOAD_DIR", os.TempDir()),
			SweepIntervalSeconds: getEnvAsInt("VIEW_SWEEP_INTERVAL_SECONDS", 60),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the portal cannot start with.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	switch c.Session.Store {
	case SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q", c.Session.Store)
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

// Timeout bounds every ordinary backend call.
func (b BackendConfig) Timeout() time.Duration {
	if b.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// ExportTimeout bounds export downloads, which stream larger bodies.
func (b BackendConfig) ExportTimeout() time.Duration {
	if b.ExportTimeoutSeconds <= 0 {
		return b.Timeout()
	}
	return time.Duration(b.ExportTimeoutSeconds) * time.Second
}

// SweepInterval is how often view state of expired sessions is reclaimed.
func (v ViewConfig) SweepInterval() time.Duration {
	if v.SweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(v.SweepIntervalSeconds) * time.Second
}

// MaxUploadBytes bounds a single ticket attachment.
func (a AppConfig) MaxUploadBytes() int64 {
	return int64(a.MaxUploadMB) << 20
}

// TTL returns how long a session lives without activity.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
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
