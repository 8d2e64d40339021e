package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Beds24    Beds24Config    `yaml:"beds24"`
	Resend    ResendConfig    `yaml:"resend"`
	SMS       SMSConfig       `yaml:"sms"`
	OTP       OTPConfig       `yaml:"otp"`
}

type AppConfig struct {
	Env            string        `yaml:"env"`
	Port           string        `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	PublicURL      string        `yaml:"public_url"`
	FunctionsToken string        `yaml:"functions_token"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	BaseCurrency   string        `yaml:"base_currency"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds the postgres connection URL.
func (d DatabaseConfig) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RabbitMQConfig struct {
	URL             string `yaml:"url"`
	ReservationsKey string `yaml:"reservations_queue"`
	ConsumerEnabled bool   `yaml:"consumer_enabled"`
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
	PermissionTTL   time.Duration `yaml:"permission_cache_ttl"`
}

type RateLimitConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Prefix         string        `yaml:"prefix"`
	Capacity       int           `yaml:"capacity"`
	RefillTokens   int           `yaml:"refill_tokens"`
	RefillInterval time.Duration `yaml:"refill_interval"`
	TTL            time.Duration `yaml:"ttl"`
	KeyStrategy    string        `yaml:"key_strategy"`
}

type Beds24Config struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ResendConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	From    string `yaml:"from"`
}

type SMSConfig struct {
	BaseURL   string  `yaml:"base_url"`
	APIKey    string  `yaml:"api_key"`
	Sender    string  `yaml:"sender"`
	RateLimit float64 `yaml:"rate_limit"`
}

type OTPConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxAttempts int           `yaml:"max_attempts"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// IsProduction reports whether the service runs in release mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production" || c.App.Env == "release"
}

// Load builds the configuration: defaults, then the optional YAML file at path
// (with ${VAR} placeholders expanded), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Env:            "development",
			Port:           "8080",
			LogLevel:       "info",
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
			PublicURL:      "http://localhost:5173",
			RequestTimeout: 15 * time.Second,
			BaseCurrency:   "USD",
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "postgres",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{},
		RabbitMQ: RabbitMQConfig{
			ReservationsKey: "reservations.events",
			ConsumerEnabled: true,
		},
		Auth: AuthConfig{
			AccessTokenTTL:  24 * time.Hour,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			PermissionTTL:   5 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			Prefix:         "rl",
			Capacity:       10,
			RefillTokens:   1,
			RefillInterval: 6 * time.Second,
			TTL:            10 * time.Minute,
			KeyStrategy:    "ip_route",
		},
		Beds24: Beds24Config{
			BaseURL: "https://beds24.com/api/v2",
			Timeout: 10 * time.Second,
		},
		Resend: ResendConfig{
			BaseURL: "https://api.resend.com",
			From:    "Stayhub <no-reply@stayhub.app>",
		},
		SMS: SMSConfig{
			RateLimit: 5,
		},
		OTP: OTPConfig{
			TTL:         5 * time.Minute,
			MaxAttempts: 5,
			Cooldown:    time.Minute,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.App.Env = envStr("APP_ENV", cfg.App.Env)
	if os.Getenv("GIN_MODE") == "release" {
		cfg.App.Env = "production"
	}
	cfg.App.Port = envStr("PORT", cfg.App.Port)
	cfg.App.LogLevel = envStr("LOG_LEVEL", cfg.App.LogLevel)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.App.AllowedOrigins = splitList(v)
	}
	cfg.App.PublicURL = envStr("PUBLIC_URL", cfg.App.PublicURL)
	cfg.App.FunctionsToken = envStr("FUNCTIONS_TOKEN", cfg.App.FunctionsToken)
	cfg.App.RequestTimeout = envDur("REQUEST_TIMEOUT", cfg.App.RequestTimeout)
	cfg.App.BaseCurrency = envStr("BASE_CURRENCY", cfg.App.BaseCurrency)

	cfg.Database.Host = envStr("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = envStr("DB_PORT", cfg.Database.Port)
	cfg.Database.User = envStr("DB_USER", cfg.Database.User)
	cfg.Database.Password = envStr("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = envStr("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = envStr("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Redis.Addr = envStr("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envStr("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envInt("REDIS_DB", cfg.Redis.DB)

	cfg.RabbitMQ.URL = envStr("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ReservationsKey = envStr("RABBITMQ_RESERVATIONS_QUEUE", cfg.RabbitMQ.ReservationsKey)
	cfg.RabbitMQ.ConsumerEnabled = envBool("RABBITMQ_CONSUMER_ENABLED", cfg.RabbitMQ.ConsumerEnabled)

	cfg.Auth.JWTSecret = envStr("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.AccessTokenTTL = envDur("ACCESS_TOKEN_TTL", cfg.Auth.AccessTokenTTL)
	cfg.Auth.RefreshTokenTTL = envDur("REFRESH_TOKEN_TTL", cfg.Auth.RefreshTokenTTL)
	cfg.Auth.PermissionTTL = envDur("PERMISSION_CACHE_TTL", cfg.Auth.PermissionTTL)

	cfg.RateLimit.Enabled = envBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.Capacity = envInt("RATE_LIMIT_CAPACITY", cfg.RateLimit.Capacity)
	cfg.RateLimit.RefillTokens = envInt("RATE_LIMIT_REFILL_TOKENS", cfg.RateLimit.RefillTokens)
	cfg.RateLimit.RefillInterval = envDur("RATE_LIMIT_REFILL_INTERVAL", cfg.RateLimit.RefillInterval)
	cfg.RateLimit.KeyStrategy = envStr("RATE_LIMIT_KEY_STRATEGY", cfg.RateLimit.KeyStrategy)

	cfg.Beds24.BaseURL = envStr("BEDS24_BASE_URL", cfg.Beds24.BaseURL)
	cfg.Beds24.Timeout = envDur("BEDS24_TIMEOUT", cfg.Beds24.Timeout)

	cfg.Resend.BaseURL = envStr("RESEND_BASE_URL", cfg.Resend.BaseURL)
	cfg.Resend.APIKey = envStr("RESEND_API_KEY", cfg.Resend.APIKey)
	cfg.Resend.From = envStr("RESEND_FROM", cfg.Resend.From)

	cfg.SMS.BaseURL = envStr("SMS_BASE_URL", cfg.SMS.BaseURL)
	cfg.SMS.APIKey = envStr("SMS_API_KEY", cfg.SMS.APIKey)
	cfg.SMS.Sender = envStr("SMS_SENDER", cfg.SMS.Sender)

	cfg.OTP.TTL = envDur("OTP_TTL", cfg.OTP.TTL)
	cfg.OTP.MaxAttempts = envInt("OTP_MAX_ATTEMPTS", cfg.OTP.MaxAttempts)
	cfg.OTP.Cooldown = envDur("OTP_COOLDOWN", cfg.OTP.Cooldown)
}

func (c *Config) validate() error {
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = "default_super_secret_key" // Development fallback only
	}
	if c.OTP.MaxAttempts <= 0 {
		return fmt.Errorf("otp max_attempts must be positive")
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
