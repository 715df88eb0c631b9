package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ContentSourceFS = "fs"
	ContentSourceR2 = "r2"

	PolicyStrict     = "strict"
	PolicyBestEffort = "best-effort"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Redis configuration (render cache). Empty URL means in-process cache.
	RedisURL       string        `json:"redis_url"`
	RedisPrefix    string        `json:"redis_prefix"`
	CacheTTL       time.Duration `json:"cache_ttl"`
	RenderCacheTTL time.Duration `json:"render_cache_ttl"`
	MaxConcurrency int           `json:"max_concurrency"`

	// Content
	ContentSource string `json:"content_source"`
	ContentDir    string `json:"content_dir"`
	NowFile       string `json:"now_file"`
	TagsFile      string `json:"tags_file"`
	ContentPolicy string `json:"content_policy"`
	WatchContent  bool   `json:"watch_content"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2Prefix    string `json:"r2_prefix"`
	R2AccountID string `json:"r2_account_id"`

	// Email delivery
	ResendAPIKey  string        `json:"resend_api_key"`
	ResendBaseURL string        `json:"resend_base_url"`
	EmailTimeout  time.Duration `json:"email_timeout"`
	ContactEmail  string        `json:"contact_email"`
	ContactFrom   string        `json:"contact_from"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	cfg, err := LoadE()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// LoadE is Load without the fatal exit, for commands that report errors themselves
func LoadE() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Redis configuration
		RedisURL:       getEnv("REDIS_URL", ""),
		RedisPrefix:    getEnv("REDIS_PREFIX", "folio:"),
		CacheTTL:       getEnvAsDuration("CACHE_TTL", 24*time.Hour),
		RenderCacheTTL: getEnvAsDuration("RENDER_CACHE_TTL", 720*time.Hour), // 30 days
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 8),

		// Content
		ContentSource: getEnv("CONTENT_SOURCE", ContentSourceFS),
		ContentDir:    getEnv("CONTENT_DIR", "./content/updates"),
		NowFile:       getEnv("NOW_FILE", "./content/now.md"),
		TagsFile:      getEnv("TAGS_FILE", ""),
		ContentPolicy: getEnv("CONTENT_POLICY", PolicyStrict),
		WatchContent:  getEnvAsBool("WATCH_CONTENT", false),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "folio-content"),
		R2Prefix:    getEnv("R2_PREFIX", "updates/"),
		R2AccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),

		// Email delivery
		ResendAPIKey:  getEnv("RESEND_API_KEY", ""),
		ResendBaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		EmailTimeout:  getEnvAsDuration("EMAIL_TIMEOUT", 15*time.Second),
		ContactEmail:  getEnv("CONTACT_EMAIL", ""),
		ContactFrom:   getEnv("CONTACT_FROM", "Contact Form <onboarding@resend.dev>"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.ContentSource {
	case ContentSourceFS:
		if c.ContentDir == "" {
			return fmt.Errorf("CONTENT_DIR is required when CONTENT_SOURCE=%s", ContentSourceFS)
		}
	case ContentSourceR2:
		if c.R2Bucket == "" {
			return fmt.Errorf("R2_BUCKET is required when CONTENT_SOURCE=%s", ContentSourceR2)
		}
		if c.R2Endpoint == "" && c.R2AccountID == "" {
			return fmt.Errorf("R2_ENDPOINT or CLOUDFLARE_ACCOUNT_ID is required when CONTENT_SOURCE=%s", ContentSourceR2)
		}
	default:
		return fmt.Errorf("unknown CONTENT_SOURCE %q", c.ContentSource)
	}

	switch c.ContentPolicy {
	case PolicyStrict, PolicyBestEffort:
	default:
		return fmt.Errorf("unknown CONTENT_POLICY %q (want %s or %s)", c.ContentPolicy, PolicyStrict, PolicyBestEffort)
	}

	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be at least 1, got %d", c.MaxConcurrency)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}

	return nil
}

// R2EndpointURL returns the S3-compatible endpoint, derived from the account ID when not set
func (c *Config) R2EndpointURL() string {
	if c.R2Endpoint != "" {
		return c.R2Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.R2AccountID)
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
