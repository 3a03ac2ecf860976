package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/equal-orm/equal/internal/logging"
	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/schema"
	"github.com/equal-orm/equal/internal/orm/store"
)

// Config represents the equal configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Naming   NamingConfig   `mapstructure:"naming"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NamingConfig controls how table names are derived from entity names
type NamingConfig struct {
	PluralTables bool   `mapstructure:"plural_tables"`
	TablePrefix  string `mapstructure:"table_prefix"`
}

// Strategy returns the registry naming strategy
func (n NamingConfig) Strategy() schema.NamingStrategy {
	return schema.NamingStrategy{TablePrefix: n.TablePrefix, PluralTables: n.PluralTables}
}

// Dialect returns the SQL dialect of the configured driver
func (d DatabaseConfig) Dialect() (dialect.Dialect, error) {
	return dialect.Parse(d.Driver)
}

// Pool returns the pool settings for store.Connect
func (d DatabaseConfig) Pool() store.PoolConfig {
	return store.PoolConfig{MaxConns: d.MaxConns, MinConns: d.MinConns}
}

// Logging returns the logger settings
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// Load loads the configuration from equal.yml or equal.yaml in the working directory
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads the configuration from path, or from equal.yml|yaml in
// the working directory when path is empty
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("naming.plural_tables", false)
	v.SetDefault("naming.table_prefix", "")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("equal")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// EQUAL_DATABASE_URL overrides database.url
	v.SetEnvPrefix("equal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Database.URL == "" {
		config.Database.URL = os.Getenv("DATABASE_URL")
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := cfg.Database.Dialect(); err != nil {
		return fmt.Errorf("database.driver: %w", err)
	}
	if cfg.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be positive, got: %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns < 0 || cfg.Database.MinConns > cfg.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and max_conns, got: %d", cfg.Database.MinConns)
	}
	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if strings.ContainsAny(cfg.Naming.TablePrefix, " \"") {
		return fmt.Errorf("naming.table_prefix must not contain spaces or quotes, got: %q", cfg.Naming.TablePrefix)
	}
	return nil
}
