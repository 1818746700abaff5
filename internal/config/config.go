package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Mailer    MailerConfig    `yaml:"mailer"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	App       AppConfig       `yaml:"app"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	PublicBaseURL  string   `yaml:"public_base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the bind host, defaulting sensibly for containers.
func (s ServerConfig) GetHost() string {
	if s.Host == "" {
		return "0.0.0.0"
	}
	return s.Host
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the optional Redis settings for landing-page caching
// and submission rate limiting.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig holds Google OAuth settings for the owner dashboard.
type AuthConfig struct {
	Enabled            bool     `yaml:"enabled"`
	GoogleClientID     string   `yaml:"google_client_id"`
	GoogleClientSecret string   `yaml:"google_client_secret"`
	CookieName         string   `yaml:"cookie_name"`
	CookieMaxAge       int      `yaml:"cookie_max_age"`
	ProUsers           []string `yaml:"pro_users"`
}

// IsPro reports whether the given account email has a pro subscription.
// Subscription billing itself is out of scope; membership is operator
// configuration.
func (a AuthConfig) IsPro(email string) bool {
	for _, e := range a.ProUsers {
		if e == email {
			return true
		}
	}
	return false
}

// StorageConfig holds S3 settings for featured-image hosting.
type StorageConfig struct {
	Enabled   bool   `yaml:"enabled"`
	S3Bucket  string `yaml:"s3_bucket"`
	AWSRegion string `yaml:"aws_region"`
	CDNDomain string `yaml:"cdn_domain"`
}

// MailerConfig holds AWS SES settings for the autoresponder integration.
type MailerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// RateLimitConfig bounds public entry submissions per client IP.
type RateLimitConfig struct {
	Enabled      bool `yaml:"enabled"`
	PerMinute    int  `yaml:"per_minute"`
	BurstAllowed int  `yaml:"burst_allowed"`
}

// AppConfig holds application-wide settings.
type AppConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	RedactPII   bool   `yaml:"redact_pii"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.Server.PublicBaseURL == "" {
		c.Server.PublicBaseURL = fmt.Sprintf("http://%s:%d", c.Server.GetHost(), c.Server.Port)
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 3
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "prizejet_session"
	}
	if c.Auth.CookieMaxAge == 0 {
		c.Auth.CookieMaxAge = 86400
	}
	if c.Storage.AWSRegion == "" {
		c.Storage.AWSRegion = "us-east-1"
	}
	if c.Mailer.Region == "" {
		c.Mailer.Region = "us-east-1"
	}
	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = 10
	}
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
}

// LoadFromEnv loads the config file and applies environment overrides.
// A .env file is honored when present (local development).
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.Server.PublicBaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("PRIZEJET_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.Enabled = true
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mailer.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mailer.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Mailer.Region = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		cfg.App.Environment = v
	}

	return cfg, nil
}
