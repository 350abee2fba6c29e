package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo

	"github.com/joho/godotenv"
)

// Backend names the record store implementation serving reads.
type Backend string

const (
	BackendMongoDB  Backend = "mongodb"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendREST     Backend = "rest"
	BackendSheets   Backend = "sheets"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	SQL       SQLConfig
	REST      RESTConfig
	Sheets    SheetsConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
	Digest    DigestConfig
	WhatsApp  WhatsAppConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port    string
	GinMode string
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// StoreConfig selects the backend and bounds each fetch.
type StoreConfig struct {
	Backend Backend
	Timeout time.Duration
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SQLConfig holds settings for the Postgres and SQLite backends.
type SQLConfig struct {
	DatabaseURL     string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RESTConfig holds settings for the HTTP data API backend.
type RESTConfig struct {
	BaseURL    string
	APIKey     string
	RetryCount int
}

// SheetsConfig contains configuration required to read from Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// RedisConfig enables the reference-data cache when URL is set.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
	TTL      time.Duration
}

// Enabled reports whether a cache should be wired.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// AnalyticsConfig tunes snapshot computation.
type AnalyticsConfig struct {
	FeedLimit      int
	RecentWindow   int
	StreamInterval time.Duration
}

// DigestConfig holds scheduler-related settings.
type DigestConfig struct {
	CronSchedule string
	Timezone     string
	Recipient    string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
}

// DigestEnabled reports whether the weekly digest can be delivered.
func (c *Config) DigestEnabled() bool {
	return c.WhatsApp.AccessToken != "" && c.WhatsApp.PhoneNumberID != "" && c.Digest.Recipient != ""
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		_ = godotenv.Load()
	}

	var p parser
	cfg := &Config{
		Server: ServerConfig{
			Port:    getenvWithDefault("APP_PORT", "8080"),
			GinMode: getenvWithDefault("GIN_MODE", "release"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend: Backend(strings.ToLower(getenvWithDefault("STORE_BACKEND", string(BackendMongoDB)))),
			Timeout: p.duration("STORE_TIMEOUT", 5*time.Second),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "ganadero"),
		},
		SQL: SQLConfig{
			DatabaseURL:     os.Getenv("DATABASE_URL"),
			SQLitePath:      getenvWithDefault("SQLITE_PATH", "ganadero.db"),
			MaxOpenConns:    p.integer("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    p.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: p.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		REST: RESTConfig{
			BaseURL:    os.Getenv("REST_BASE_URL"),
			APIKey:     os.Getenv("REST_API_KEY"),
			RetryCount: p.integer("REST_RETRY_COUNT", 2),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.integer("REDIS_DB", 0),
			TTL:      p.duration("REDIS_TTL", 10*time.Minute),
		},
		Analytics: AnalyticsConfig{
			FeedLimit:      p.integer("ANALYTICS_FEED_LIMIT", 8),
			RecentWindow:   p.integer("ANALYTICS_RECENT_WINDOW", 5),
			StreamInterval: p.duration("ANALYTICS_STREAM_INTERVAL", 30*time.Second),
		},
		Digest: DigestConfig{
			CronSchedule: getenvWithDefault("DIGEST_CRON_SCHEDULE", "0 7 * * 1"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Argentina/Buenos_Aires"),
			Recipient:    os.Getenv("DIGEST_RECIPIENT"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongodb backend")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case BackendPostgres:
		if c.SQL.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be provided for the postgres backend")
		}
	case BackendSQLite:
		if c.SQL.SQLitePath == "" {
			return errors.New("SQLITE_PATH must not be empty")
		}
	case BackendREST:
		if c.REST.BaseURL == "" {
			return errors.New("REST_BASE_URL must be provided for the rest backend")
		}
		if c.REST.RetryCount < 0 {
			return errors.New("REST_RETRY_COUNT must not be negative")
		}
	case BackendSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided for the sheets backend")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided for the sheets backend")
		}
	default:
		return fmt.Errorf("STORE_BACKEND %q is not supported", c.Store.Backend)
	}

	if c.Store.Timeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}

	if c.Analytics.FeedLimit < 1 || c.Analytics.FeedLimit > 50 {
		return errors.New("ANALYTICS_FEED_LIMIT must be between 1 and 50")
	}
	if c.Analytics.RecentWindow < 1 {
		return errors.New("ANALYTICS_RECENT_WINDOW must be positive")
	}
	if c.Analytics.StreamInterval < time.Second {
		return errors.New("ANALYTICS_STREAM_INTERVAL must be at least 1s")
	}

	if c.Digest.CronSchedule == "" {
		return errors.New("DIGEST_CRON_SCHEDULE must be provided")
	}

	if c.Digest.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Digest.Timezone, err)
	}

	if c.WhatsApp.BaseURL == "" {
		return errors.New("WHATSAPP_BASE_URL must not be empty")
	}

	if c.WhatsApp.APIVersion == "" {
		return errors.New("WHATSAPP_API_VERSION must not be empty")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) integer(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v
}
