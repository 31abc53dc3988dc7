// Package config loads enumbler.yaml, including the models and entries the
// CLI and API serve.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/conduit-lang/enumbler/internal/logging"
	"github.com/conduit-lang/enumbler/internal/reconcile"
)

// Store backends
const (
	StoreSQL    = "sql"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config represents the enumbler configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Store     string          `mapstructure:"store"`
	Log       logging.Config  `mapstructure:"log"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Server    ServerConfig    `mapstructure:"server"`
	Models    []ModelConfig   `mapstructure:"models"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// RedisConfig represents redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ReconcileConfig holds the seed defaults
type ReconcileConfig struct {
	DeleteMissing bool `mapstructure:"delete_missing"`
	Validate      bool `mapstructure:"validate"`
	// Atomic wraps each model's run in a transaction on SQL stores
	Atomic bool `mapstructure:"atomic"`
}

// Options converts the section to reconciler options
func (r ReconcileConfig) Options() reconcile.Options {
	return reconcile.Options{DeleteMissing: r.DeleteMissing, Validate: r.Validate}
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ModelConfig declares one enumbled model and its entries
type ModelConfig struct {
	Name        string        `mapstructure:"name"`
	Table       string        `mapstructure:"table"`
	LabelColumn string        `mapstructure:"label_column"`
	Columns     []string      `mapstructure:"columns"`
	Entries     []EntryConfig `mapstructure:"entries"`
}

// EntryConfig declares one entry. Attribute keys are lowercased by viper.
type EntryConfig struct {
	Name       string         `mapstructure:"name"`
	ID         any            `mapstructure:"id"`
	Label      string         `mapstructure:"label"`
	Attributes map[string]any `mapstructure:"attributes"`
}

// Load reads the configuration from path, or from enumbler.yaml in the
// working directory when path is empty. A missing default file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "enumbler:")
	v.SetDefault("store", StoreSQL)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("reconcile.delete_missing", false)
	v.SetDefault("reconcile.validate", true)
	v.SetDefault("reconcile.atomic", true)
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "localhost")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("enumbler")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("ENUMBLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Model returns the model declaration with the given name, ignoring case
func (c *Config) Model(name string) (ModelConfig, bool) {
	for _, m := range c.Models {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return ModelConfig{}, false
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	switch cfg.Store {
	case StoreSQL:
		switch cfg.Database.Driver {
		case "pgx", "postgres", "sqlite3":
		default:
			return fmt.Errorf("database.driver must be one of pgx, postgres, sqlite3, got: %s", cfg.Database.Driver)
		}
	case StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("store must be one of %s, %s, %s, got: %s", StoreSQL, StoreRedis, StoreMemory, cfg.Store)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}

	seen := make(map[string]struct{}, len(cfg.Models))
	for i, m := range cfg.Models {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("models[%d].name is required", i)
		}
		key := strings.ToLower(m.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("models[%d].name %q is declared twice", i, m.Name)
		}
		seen[key] = struct{}{}

		for j, e := range m.Entries {
			if strings.TrimSpace(e.Name) == "" {
				return fmt.Errorf("models[%d].entries[%d].name is required", i, j)
			}
			if e.ID == nil {
				return fmt.Errorf("models[%d].entries[%d].id is required", i, j)
			}
		}
	}
	return nil
}
