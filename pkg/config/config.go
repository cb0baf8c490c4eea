package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingKey marks a required provider credential that is not configured.
// Callers in the briefing core re-wrap it as contracts.ErrConfigurationMissing.
var ErrMissingKey = errors.New("required configuration missing")

// Config holds all configuration for the application
// ⭐ SSOT: every environment variable is read here and only here
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Providers
	AlphaVantage AlphaVantageConfig
	NewsAPI      NewsAPIConfig
	GoogleNews   GoogleNewsConfig
	Gemini       GeminiConfig

	// ProviderTimeout bounds every outbound provider call
	ProviderTimeout time.Duration

	// Optional infrastructure
	Redis    RedisConfig
	Database DatabaseConfig
	SMTP     SMTPConfig

	// Watchlist briefings
	Watchlist         []WatchlistEntry
	WatchlistSchedule string
	WatchlistFile     string

	// Logging
	LogLevel  string
	LogFormat string
}

// AlphaVantageConfig holds quote and symbol-search provider settings
type AlphaVantageConfig struct {
	APIKey        string
	BaseURL       string
	RatePerMinute int
}

// NewsAPIConfig holds NewsAPI settings
type NewsAPIConfig struct {
	APIKey  string
	BaseURL string
	Domains []string
}

// GoogleNewsConfig holds the syndication feed settings (no key required)
type GoogleNewsConfig struct {
	BaseURL   string
	UserAgent string
}

// GeminiConfig holds narrative generator settings
type GeminiConfig struct {
	APIKey  string
	Model   string
	Enabled bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration for the briefing archive
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration

	// Retention is how long archived briefings are kept
	Retention time.Duration
}

// Enabled reports whether a database URL was supplied
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// SMTPConfig holds email delivery settings for scheduled briefings
type SMTPConfig struct {
	Server   string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// Enabled reports whether enough SMTP settings are present to send mail
func (s SMTPConfig) Enabled() bool {
	return s.Server != "" && s.User != "" && s.Password != "" && s.To != ""
}

// WatchlistEntry is one company scheduled for a recurring briefing
type WatchlistEntry struct {
	Company string
	Ticker  string
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	watchlist, err := ParseWatchlist(getEnv("WATCHLIST", ""))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		AlphaVantage: AlphaVantageConfig{
			APIKey:        getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL:       getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"),
			RatePerMinute: getEnvAsInt("ALPHA_VANTAGE_RATE_PER_MIN", 5),
		},

		NewsAPI: NewsAPIConfig{
			APIKey:  getEnv("NEWS_API_KEY", ""),
			BaseURL: getEnv("NEWS_API_BASE_URL", "https://newsapi.org"),
			Domains: splitList(getEnv("NEWS_API_DOMAINS", "reuters.com,bloomberg.com,wsj.com,ft.com,cnbc.com")),
		},

		GoogleNews: GoogleNewsConfig{
			BaseURL:   getEnv("GOOGLE_NEWS_BASE_URL", "https://news.google.com"),
			UserAgent: getEnv("GOOGLE_NEWS_USER_AGENT", "Mozilla/5.0 (compatible; ClientIntel/1.0)"),
		},

		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Enabled: getEnvAsBool("NARRATIVE_ENABLED", true),
		},

		ProviderTimeout: getEnvAsDuration("PROVIDER_TIMEOUT", "10s"),

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
			Retention:       getEnvAsDuration("ARCHIVE_RETENTION", "2160h"),
		},

		SMTP: SMTPConfig{
			Server:   getEnv("SMTP_SERVER", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", ""),
			To:       getEnv("BRIEFING_EMAIL_TO", ""),
		},

		Watchlist:         watchlist,
		WatchlistSchedule: getEnv("WATCHLIST_SCHEDULE", "0 30 7 * * 1-5"),
		WatchlistFile:     getEnv("WATCHLIST_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks values that would make the process misbehave regardless of which
// providers are used. Provider credentials are checked by RequireProviders.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}

	if c.AlphaVantage.RatePerMinute <= 0 {
		return fmt.Errorf("ALPHA_VANTAGE_RATE_PER_MIN must be positive")
	}

	return nil
}

// RequireProviders reports every missing credential needed to build a briefing.
// The narrative key is only required when narrative generation is enabled.
func (c *Config) RequireProviders() error {
	var missing []string
	if c.AlphaVantage.APIKey == "" {
		missing = append(missing, "ALPHA_VANTAGE_API_KEY")
	}
	if c.NewsAPI.APIKey == "" {
		missing = append(missing, "NEWS_API_KEY")
	}
	if c.Gemini.Enabled && c.Gemini.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(missing, ", "))
	}
	return nil
}

// NarrativeEnabled reports whether the narrative generator should be wired
func (c *Config) NarrativeEnabled() bool {
	return c.Gemini.Enabled && c.Gemini.APIKey != ""
}

// ParseWatchlist parses "Company:TICKER,Company2:TICKER2"
func ParseWatchlist(s string) ([]WatchlistEntry, error) {
	var entries []WatchlistEntry
	for _, part := range splitList(s) {
		company, ticker, ok := strings.Cut(part, ":")
		company = strings.TrimSpace(company)
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if !ok || company == "" || ticker == "" {
			return nil, fmt.Errorf("invalid WATCHLIST entry %q (want Company:TICKER)", part)
		}
		entries = append(entries, WatchlistEntry{Company: company, Ticker: ticker})
	}
	return entries, nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
