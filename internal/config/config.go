package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	customerrors "github.com/axellelanca/urlalias/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultConfigDir is where LoadConfig looks for config.yaml.
const DefaultConfigDir = "./configs"

// Config represents the main structure mapping the entire application configuration.
type Config struct {
	Server struct {
		Port    int    `mapstructure:"port"`
		BaseURL string `mapstructure:"base_url"` // prefix of every public alias URL
	} `mapstructure:"server"`

	Database struct {
		// sqlite://<path> or postgres://...
		URL string `mapstructure:"url"`
	} `mapstructure:"database"`

	Alias struct {
		TTL         time.Duration `mapstructure:"ttl"`
		CodeLength  int           `mapstructure:"code_length"`
		MaxAttempts int           `mapstructure:"max_attempts"`
	} `mapstructure:"alias"`

	// Redis is optional: an empty Addr disables the alias cache.
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	Monitor struct {
		IntervalMinutes int `mapstructure:"interval_minutes"` // 0 disables the expiry monitor
	} `mapstructure:"monitor"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// LoadConfig loads the configuration from ./configs/config.yaml, the environment
// and the defaults, in decreasing order of precedence for the environment.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigDir)
}

// LoadConfigFrom is LoadConfig with an explicit directory for config.yaml.
// A .env file in the working directory is loaded first without overriding
// variables already set.
func LoadConfigFrom(dir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	// e.g. "server.port" can be overridden by SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, customerrors.ErrConfigLoad{Path: dir, Reason: err.Error()}
		}
		slog.Debug("config file not found, using defaults and environment", "dir", dir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, customerrors.ErrConfigLoad{Path: dir, Reason: fmt.Sprintf("error unmarshaling config: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, customerrors.ErrConfigLoad{Path: dir, Reason: err.Error()}
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.url", "sqlite://url_shortener.db")
	v.SetDefault("alias.ttl", "24h")
	v.SetDefault("alias.code_length", 12)
	v.SetDefault("alias.max_attempts", 5)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")
	v.SetDefault("monitor.interval_minutes", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate rejects values the application cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	case strings.TrimSpace(c.Server.BaseURL) == "":
		return errors.New("server.base_url must not be empty")
	case c.Database.URL == "":
		return errors.New("database.url must not be empty")
	case c.Alias.TTL <= 0:
		return fmt.Errorf("alias.ttl must be positive, got %s", c.Alias.TTL)
	case c.Alias.CodeLength <= 0 || c.Alias.CodeLength > 16:
		return fmt.Errorf("alias.code_length must be between 1 and 16, got %d", c.Alias.CodeLength)
	case c.Alias.MaxAttempts <= 0:
		return fmt.Errorf("alias.max_attempts must be positive, got %d", c.Alias.MaxAttempts)
	case c.Redis.TTL < 0:
		return fmt.Errorf("redis.ttl must not be negative, got %s", c.Redis.TTL)
	case c.Monitor.IntervalMinutes < 0:
		return fmt.Errorf("monitor.interval_minutes must not be negative, got %d", c.Monitor.IntervalMinutes)
	}
	return nil
}
