package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Sygemat  SygematConfig
	Reset    ResetConfig
	Limiter  LimiterConfig
	Articles ArticlesConfig
	MongoDB  MongoDBConfig
	Sheets   SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// SygematConfig contains the upstream ERP endpoint and credentials. The API
// key never reaches the browser; every vendor call goes through this service.
type SygematConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ResetConfig drives the password-reset email flow.
type ResetConfig struct {
	WebhookURL     string
	WebhookTimeout time.Duration
	PortalBaseURL  string
}

// LimiterConfig holds the login rate-limiter thresholds.
type LimiterConfig struct {
	MaxAttempts   int
	LockDuration  time.Duration
	ResetAfter    time.Duration
	PurgeSchedule string
}

// ArticlesConfig holds catalog fetch behaviour.
type ArticlesConfig struct {
	FetchTimeout    time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	AdminProviderID int
}

// MongoDBConfig holds settings for the lockout store. An empty URI keeps the
// limiter on its in-memory store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig enables the scheduled catalog snapshot export when both
// credential fields are set.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	CronSchedule    string
	ProviderIDs     []int
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
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	providerIDs, err := parseIntList(os.Getenv("SNAPSHOT_PROVIDER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_PROVIDER_IDS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Sygemat: SygematConfig{
			BaseURL: getenvWithDefault("SYGEMAT_BASE_URL", "https://sygemat.com.ar/api-prod-prov/Sygemat_Dat_dat/v1"),
			APIKey:  os.Getenv("SYGEMAT_API_KEY"),
			Timeout: getenvDuration("SYGEMAT_TIMEOUT", 30*time.Second),
		},
		Reset: ResetConfig{
			WebhookURL:     os.Getenv("RESET_WEBHOOK_URL"),
			WebhookTimeout: getenvDuration("RESET_WEBHOOK_TIMEOUT", 10*time.Second),
			PortalBaseURL:  os.Getenv("PORTAL_BASE_URL"),
		},
		Limiter: LimiterConfig{
			MaxAttempts:   getenvInt("LOGIN_MAX_ATTEMPTS", 5),
			LockDuration:  getenvDuration("LOGIN_LOCK_DURATION", 60*time.Second),
			ResetAfter:    getenvDuration("LOGIN_RESET_AFTER", 5*time.Minute),
			PurgeSchedule: getenvWithDefault("LOCKOUT_PURGE_SCHEDULE", "*/15 * * * *"),
		},
		Articles: ArticlesConfig{
			FetchTimeout:    getenvDuration("ARTICLES_FETCH_TIMEOUT", 30*time.Second),
			RetryAttempts:   getenvInt("ARTICLES_RETRY_ATTEMPTS", 3),
			RetryDelay:      getenvDuration("ARTICLES_RETRY_DELAY", 5*time.Second),
			AdminProviderID: getenvInt("ADMIN_PROVIDER_ID", 9999999),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "provider_portal"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("SNAPSHOT_SPREADSHEET_ID"),
			CronSchedule:    getenvWithDefault("SNAPSHOT_CRON_SCHEDULE", "0 6 * * *"),
			ProviderIDs:     providerIDs,
		},
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

	switch {
	case c.Sygemat.BaseURL == "":
		return errors.New("SYGEMAT_BASE_URL must not be empty")
	case c.Sygemat.APIKey == "":
		return errors.New("SYGEMAT_API_KEY must be provided")
	}

	if c.Reset.WebhookURL == "" {
		return errors.New("RESET_WEBHOOK_URL must be provided")
	}
	if c.Reset.PortalBaseURL == "" {
		return errors.New("PORTAL_BASE_URL must be provided")
	}

	if c.Limiter.MaxAttempts < 1 {
		return errors.New("LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if c.Limiter.LockDuration <= 0 {
		return errors.New("LOGIN_LOCK_DURATION must be positive")
	}
	if c.Limiter.ResetAfter < c.Limiter.LockDuration {
		return errors.New("LOGIN_RESET_AFTER must not be shorter than LOGIN_LOCK_DURATION")
	}

	if c.Articles.RetryAttempts < 0 {
		return errors.New("ARTICLES_RETRY_ATTEMPTS must not be negative")
	}

	if c.Sheets.Enabled() && len(c.Sheets.ProviderIDs) == 0 {
		return errors.New("SNAPSHOT_PROVIDER_IDS must be provided when the snapshot export is enabled")
	}

	return nil
}

// Enabled reports whether the snapshot export should run.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func parseIntList(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", part, err)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
