// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Auth     AuthConfig     `envconfig:"AUTH"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	AMQP     AMQPConfig     `envconfig:"AMQP"`
	App      AppConfig      `envconfig:"APP"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `split_words:"true" default:"8000"`
	ReadTimeout  time.Duration `split_words:"true" default:"15s"`
	WriteTimeout time.Duration `split_words:"true" default:"15s"`
	IdleTimeout  time.Duration `split_words:"true" default:"60s"`
}

// DatabaseConfig holds connection settings. DSN, when set, wins over the
// individual fields. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver   string `split_words:"true" default:"postgres"`
	DSN      string `split_words:"true"`
	Host     string `split_words:"true" default:"localhost"`
	Port     int    `split_words:"true" default:"5432"`
	User     string `split_words:"true" default:"orders"`
	Password string `split_words:"true" default:"orders123"`
	Name     string `split_words:"true" default:"orders"`
	SSLMode  string `split_words:"true" default:"disable"`
	Debug    bool   `split_words:"true"`
}

// AuthConfig holds token settings.
type AuthConfig struct {
	Secret     string        `split_words:"true"`
	AccessTTL  time.Duration `split_words:"true" default:"30m"`
	RefreshTTL time.Duration `split_words:"true" default:"168h"`
	// CacheTTL bounds how long a resolved principal is reused in-process.
	CacheTTL time.Duration `split_words:"true" default:"1m"`
}

// RedisConfig enables the shared principal cache when Addr is set.
type RedisConfig struct {
	Addr     string        `split_words:"true"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true"`
	TTL      time.Duration `split_words:"true" default:"5m"`
}

// AMQPConfig enables order event publishing when URL is set.
type AMQPConfig struct {
	URL      string `split_words:"true"`
	Exchange string `split_words:"true" default:"orders"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name          string `split_words:"true" default:"Lu Estilo API"`
	Dev           bool   `split_words:"true"`
	Migrations    bool   `split_words:"true"`
	LogLevel      string `split_words:"true" default:"info"`
	AdminEmail    string `split_words:"true"`
	AdminPassword string `split_words:"true"`
}

// Load reads configuration from environment variables, applying defaults
// suited to local development.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("load config: unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.DSN == "" {
		cfg.Database.DSN = "orders.db"
	}
	return &cfg, nil
}

// ConnString returns the DSN handed to the GORM driver.
func (d DatabaseConfig) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by
// golang-migrate. A URL-style DSN is returned as is.
func (d DatabaseConfig) URL() string {
	if lower := strings.ToLower(d.DSN); strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return d.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}
