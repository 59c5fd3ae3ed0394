// Package config loads cemigrate settings from a YAML file, a .env file and
// CEMIGRATE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/gotrs-io/cemigrate/internal/database"
)

// EnvPrefix is prepended to every environment override, e.g.
// CEMIGRATE_SOURCE_HOST for source.host.
const EnvPrefix = "CEMIGRATE"

// Config represents the migration configuration
type Config struct {
	Source      SourceConfig      `mapstructure:"source"`
	Destination DestinationConfig `mapstructure:"destination"`
	Legacy      LegacyConfig      `mapstructure:"legacy"`
	Migration   MigrationConfig   `mapstructure:"migration"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// SourceConfig is the Clientexec database. It is always opened read-only.
type SourceConfig struct {
	database.Config `mapstructure:",squash"`
	Timezone        string `mapstructure:"timezone"`
}

// DestinationConfig is the Blesta database and the company records are
// imported into.
type DestinationConfig struct {
	database.Config `mapstructure:",squash"`
	CompanyID       int64  `mapstructure:"company_id"`
	EncryptionKey   string `mapstructure:"encryption_key"`
	DefaultCountry  string `mapstructure:"default_country"`
	DefaultCurrency string `mapstructure:"default_currency"`
	Language        string `mapstructure:"language"`
}

// LegacyConfig holds Clientexec secrets needed to read stored cards.
type LegacyConfig struct {
	Passphrase string `mapstructure:"passphrase"`
}

type MigrationConfig struct {
	Debug        bool   `mapstructure:"debug"`
	MappingsFile string `mapstructure:"mappings_file"`
	MetricsFile  string `mapstructure:"metrics_file"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.host", "")
	v.SetDefault("source.port", 3306)
	v.SetDefault("source.name", "")
	v.SetDefault("source.user", "")
	v.SetDefault("source.password", "")
	v.SetDefault("source.charset", "utf8")
	v.SetDefault("source.parse_time", false)
	v.SetDefault("source.max_open_conns", 4)
	v.SetDefault("source.max_idle_conns", 2)
	v.SetDefault("source.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("source.timezone", "UTC")

	v.SetDefault("destination.host", "")
	v.SetDefault("destination.port", 3306)
	v.SetDefault("destination.name", "")
	v.SetDefault("destination.user", "")
	v.SetDefault("destination.password", "")
	v.SetDefault("destination.charset", "utf8mb4")
	v.SetDefault("destination.parse_time", true)
	v.SetDefault("destination.max_open_conns", 4)
	v.SetDefault("destination.max_idle_conns", 2)
	v.SetDefault("destination.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("destination.company_id", 1)
	v.SetDefault("destination.encryption_key", "")
	v.SetDefault("destination.default_country", "US")
	v.SetDefault("destination.default_currency", "USD")
	v.SetDefault("destination.language", "en_us")

	v.SetDefault("legacy.passphrase", "")

	v.SetDefault("migration.debug", false)
	v.SetDefault("migration.mappings_file", "")
	v.SetDefault("migration.metrics_file", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Load reads configuration. When path is empty an optional cemigrate.yaml in
// the working directory is used. A .env file, if present, is loaded into the
// process environment first; real environment variables take precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("cemigrate")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// It's OK if cemigrate.yaml doesn't exist
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	// Environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Source.ReadOnly = true
	return cfg, nil
}

// Location returns the zone source timestamps are stored in.
func (c *SourceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}
