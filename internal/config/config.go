// Package config loads server configuration from a YAML file with
// environment-variable overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds SQLite configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// SettlementConfig tunes the ledger engine and request workflow.
type SettlementConfig struct {
	Epsilon   float64       `mapstructure:"epsilon"`
	Precision int           `mapstructure:"precision"`
	Expiry    time.Duration `mapstructure:"expiry"`
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the config file at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error; the
// defaults plus environment are enough to boot a dev server.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("auth.jwt_secret", "TEAMTAB_JWT_SECRET")
	v.BindEnv("database.path", "TEAMTAB_DB_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/teamtab.db")

	v.SetDefault("auth.token_ttl", 24*time.Hour)

	v.SetDefault("settlement.epsilon", 0.01)
	v.SetDefault("settlement.precision", 2)
	v.SetDefault("settlement.expiry", 7*24*time.Hour)

	v.SetDefault("logger.level", "info")
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (set TEAMTAB_JWT_SECRET)")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Settlement.Epsilon <= 0 {
		return fmt.Errorf("settlement.epsilon must be positive")
	}
	if c.Settlement.Expiry <= 0 {
		return fmt.Errorf("settlement.expiry must be positive")
	}
	return nil
}
