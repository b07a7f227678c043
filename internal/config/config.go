package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/boxdscrape/internal/extract"
)

// Config holds all configuration for the boxdscrape server.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Scraper   ScraperConfig
	Browser   BrowserConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

// DatabaseConfig points at the ratings archive. An empty URL disables it.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig points at the profile cache and rate-limit counters. An empty
// URL disables both.
type RedisConfig struct {
	URL             string
	ProfileCacheTTL time.Duration
}

type RateLimitConfig struct {
	PerMinute int
}

type ScraperConfig struct {
	BaseURL           string
	SelectorSet       string
	PageDelay         time.Duration
	NavigationTimeout time.Duration
	SelectorTimeout   time.Duration
	MaxConcurrentJobs int
	JobRetention      time.Duration
}

type BrowserConfig struct {
	Headless       bool
	ExecutablePath string
	UserAgent      string
	InstallDriver  bool
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any value is invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("BOXD_PORT", 8080),
			Env:  envString("BOXD_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:             os.Getenv("REDIS_URL"),
			ProfileCacheTTL: envDuration("PROFILE_CACHE_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			PerMinute: envInt("RATE_LIMIT_PER_MINUTE", 30),
		},
		Scraper: ScraperConfig{
			BaseURL:           envString("SCRAPER_BASE_URL", "https://letterboxd.com"),
			SelectorSet:       envString("SCRAPER_SELECTOR_SET", extract.DefaultSelectorVersion),
			PageDelay:         envDuration("SCRAPER_PAGE_DELAY", 750*time.Millisecond),
			NavigationTimeout: envDuration("SCRAPER_NAVIGATION_TIMEOUT", 30*time.Second),
			SelectorTimeout:   envDuration("SCRAPER_SELECTOR_TIMEOUT", 10*time.Second),
			MaxConcurrentJobs: envInt("SCRAPER_MAX_CONCURRENT_JOBS", 4),
			JobRetention:      envDuration("SCRAPER_JOB_RETENTION", time.Hour),
		},
		Browser: BrowserConfig{
			Headless:       envBool("BROWSER_HEADLESS", true),
			ExecutablePath: os.Getenv("BROWSER_EXECUTABLE_PATH"),
			UserAgent:      os.Getenv("BROWSER_USER_AGENT"),
			InstallDriver:  envBool("BROWSER_INSTALL_DRIVER", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("BOXD_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Database.URL != "" &&
		!strings.HasPrefix(c.Database.URL, "postgres://") && !strings.HasPrefix(c.Database.URL, "postgresql://") {
		return fmt.Errorf("DATABASE_URL must start with postgres:// or postgresql://")
	}

	if c.Redis.URL != "" &&
		!strings.HasPrefix(c.Redis.URL, "redis://") && !strings.HasPrefix(c.Redis.URL, "rediss://") {
		return fmt.Errorf("REDIS_URL must start with redis:// or rediss://")
	}
	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimit.PerMinute)
	}

	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("SCRAPER_BASE_URL must be an http:// or https:// URL, got %q", c.Scraper.BaseURL)
	}
	if _, err := extract.LookupSelectors(c.Scraper.SelectorSet); err != nil {
		return fmt.Errorf("SCRAPER_SELECTOR_SET: %w", err)
	}
	if c.Scraper.PageDelay < 0 {
		return fmt.Errorf("SCRAPER_PAGE_DELAY must not be negative, got %s", c.Scraper.PageDelay)
	}
	if c.Scraper.NavigationTimeout <= 0 {
		return fmt.Errorf("SCRAPER_NAVIGATION_TIMEOUT must be positive, got %s", c.Scraper.NavigationTimeout)
	}
	if c.Scraper.SelectorTimeout <= 0 {
		return fmt.Errorf("SCRAPER_SELECTOR_TIMEOUT must be positive, got %s", c.Scraper.SelectorTimeout)
	}
	if c.Scraper.MaxConcurrentJobs < 1 {
		return fmt.Errorf("SCRAPER_MAX_CONCURRENT_JOBS must be at least 1, got %d", c.Scraper.MaxConcurrentJobs)
	}
	if c.Scraper.JobRetention <= 0 {
		return fmt.Errorf("SCRAPER_JOB_RETENTION must be positive, got %s", c.Scraper.JobRetention)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}
