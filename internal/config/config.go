// Package config loads the startup configuration. Values come from the
// environment (optionally seeded from a .env file); the binary's flags may
// override a few of them afterwards.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "MECHATRACK"

// Config is passed explicitly to every component that needs settings.
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Inventory InventoryConfig
	Images    ImagesConfig
}

type AppConfig struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Addr      string `envconfig:"ADDR" default:":5000"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile   string `envconfig:"LOG_FILE"`
}

type DBConfig struct {
	Path string `envconfig:"DB_PATH" default:"mechatrack.sqlite3"`
}

type JWTConfig struct {
	// Secret may be empty; the server then loads or generates one in the database.
	Secret string        `envconfig:"JWT_SECRET"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"mechatrack"`
	TTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`
}

type RedisConfig struct {
	// URL enables Redis-backed auth rate limiting when set.
	URL          string        `envconfig:"REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

type RateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit     int           `envconfig:"RATE_LIMIT_LOGIN_IP" default:"20"`
	LoginEmailLimit  int           `envconfig:"RATE_LIMIT_LOGIN_EMAIL" default:"5"`
	SignupWindow     time.Duration `envconfig:"RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupIPLimit    int           `envconfig:"RATE_LIMIT_SIGNUP_IP" default:"10"`
	SignupEmailLimit int           `envconfig:"RATE_LIMIT_SIGNUP_EMAIL" default:"3"`
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"LOW_STOCK_THRESHOLD" default:"5"`
}

type ImagesConfig struct {
	MaxUploadBytes int64 `envconfig:"IMAGE_MAX_UPLOAD_BYTES" default:"5242880"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return errors.New("database path is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt ttl must be positive, got %s", c.JWT.TTL)
	}
	if c.Inventory.LowStockThreshold < 0 {
		return fmt.Errorf("low stock threshold must not be negative, got %d", c.Inventory.LowStockThreshold)
	}
	if c.Images.MaxUploadBytes <= 0 {
		return fmt.Errorf("image upload limit must be positive, got %d", c.Images.MaxUploadBytes)
	}
	return nil
}

// IsDev reports whether the app runs in a development environment.
func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "development") || strings.EqualFold(a.Env, "dev")
}

// RateLimitEnabled reports whether a Redis backend for rate limiting is configured.
func (r RedisConfig) RateLimitEnabled() bool {
	return strings.TrimSpace(r.URL) != ""
}
