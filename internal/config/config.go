package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/chadmayfield/wxreport/internal/loader"
)

// Config is the top-level configuration for wxreport.
type Config struct {
	LogFormat string          `mapstructure:"log_format"`
	Source    SourceConfig    `mapstructure:"source"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Query     QueryConfig     `mapstructure:"query"`
	Report    ReportConfig    `mapstructure:"report"`
	Stations  []StationConfig `mapstructure:"stations"`
}

// SourceConfig selects where the report command reads its records from.
type SourceConfig struct {
	Kind     string         `mapstructure:"kind"` // "manifest", "sqlite" or "postgres"
	Manifest string         `mapstructure:"manifest"`
	Columns  loader.Columns `mapstructure:"columns"`
}

// StationConfig defines a Tempest station used by backfill.
type StationConfig struct {
	Token     string `mapstructure:"token"`
	StationID int    `mapstructure:"station_id"`
	DeviceID  int    `mapstructure:"device_id"`
	Name      string `mapstructure:"name"`
}

// StorageConfig defines the database backend.
type StorageConfig struct {
	Driver   string         `mapstructure:"driver"` // "sqlite" or "postgres"
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// SQLiteConfig holds SQLite-specific configuration.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig holds PostgreSQL-specific configuration.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// QueryConfig controls how criteria admit records.
type QueryConfig struct {
	Predicate string `mapstructure:"predicate"` // "collection" or "record"
}

// ReportConfig controls report output.
type ReportConfig struct {
	OutputPath  string `mapstructure:"output_path"`
	ExportMode  string `mapstructure:"export_mode"` // "truncate" or "append"
	ClearScreen bool   `mapstructure:"clear_screen"`
}

// envKeyReplacer maps nested keys to env names: query.predicate → WXREPORT_QUERY_PREDICATE.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Load reads configuration from flag path, env vars, then default file paths.
// Precedence: flag → $WXREPORT_CONFIG env → ~/.config/wxreport/config.yaml → /etc/wxreport/config.yaml
// A .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("log_format", "json")
	v.SetDefault("source.kind", "manifest")
	v.SetDefault("source.manifest", "data/data_source_test.txt")
	v.SetDefault("source.columns.timestamp", loader.DefaultColumns.Timestamp)
	v.SetDefault("source.columns.wind_speed", loader.DefaultColumns.WindSpeed)
	v.SetDefault("source.columns.temperature", loader.DefaultColumns.Temperature)
	v.SetDefault("source.columns.solar_radiation", loader.DefaultColumns.SolarRadiation)
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite.path", "data/wxreport.db")
	v.SetDefault("query.predicate", "collection")
	v.SetDefault("report.output_path", "WindTempSolar.csv")
	v.SetDefault("report.export_mode", "truncate")
	v.SetDefault("report.clear_screen", true)

	// Env var support
	v.SetEnvPrefix("WXREPORT")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if envPath := os.Getenv("WXREPORT_CONFIG"); envPath != "" {
		v.SetConfigFile(envPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wxreport"))
		}
		v.AddConfigPath("/etc/wxreport")
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if cfgPath := v.ConfigFileUsed(); cfgPath != "" {
		// Station tokens live here; warn if others can read them.
		if info, err := os.Stat(cfgPath); err == nil {
			if perm := info.Mode().Perm(); perm&0004 != 0 {
				slog.Warn("config file is world-readable", "path", cfgPath, "permissions", fmt.Sprintf("%04o", perm))
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// AutomaticEnv cannot reach array elements, so tokens are injected by index
	// (WXREPORT_STATIONS_0_TOKEN, ...).
	for i := range cfg.Stations {
		if tok := os.Getenv(fmt.Sprintf("WXREPORT_STATIONS_%d_TOKEN", i)); tok != "" {
			cfg.Stations[i].Token = tok
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete and correct. Stations
// are checked separately by ValidateStations since only backfill needs them.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case "manifest":
		if c.Source.Manifest == "" {
			return fmt.Errorf("source.manifest is required for manifest source")
		}
	case "sqlite", "postgres":
		if c.Source.Kind != c.Storage.Driver {
			return fmt.Errorf("source.kind %q does not match storage.driver %q", c.Source.Kind, c.Storage.Driver)
		}
	default:
		return fmt.Errorf("source.kind must be 'manifest', 'sqlite' or 'postgres', got %q", c.Source.Kind)
	}

	switch c.Storage.Driver {
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for sqlite driver")
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			return fmt.Errorf("storage.postgres.dsn is required for postgres driver")
		}
	default:
		return fmt.Errorf("storage.driver must be 'sqlite' or 'postgres', got %q", c.Storage.Driver)
	}

	switch c.Query.Predicate {
	case "", "collection", "record":
	default:
		return fmt.Errorf("query.predicate must be 'collection' or 'record', got %q", c.Query.Predicate)
	}

	switch c.Report.ExportMode {
	case "", "truncate", "append":
	default:
		return fmt.Errorf("report.export_mode must be 'truncate' or 'append', got %q", c.Report.ExportMode)
	}
	if c.Report.OutputPath == "" {
		return fmt.Errorf("report.output_path is required")
	}

	return nil
}

// ValidateStations checks the station list used by backfill.
func (c *Config) ValidateStations() error {
	if len(c.Stations) == 0 {
		return fmt.Errorf("at least one station is required")
	}
	for i, s := range c.Stations {
		if s.StationID == 0 {
			return fmt.Errorf("station[%d]: station_id is required", i)
		}
		if s.Token == "" {
			return fmt.Errorf("station[%d]: token is required", i)
		}
		if s.DeviceID == 0 {
			return fmt.Errorf("station[%d]: device_id is required", i)
		}
	}
	return nil
}

// Station returns the configured station with the given ID.
func (c *Config) Station(id int) (StationConfig, bool) {
	for _, st := range c.Stations {
		if st.StationID == id {
			return st, true
		}
	}
	return StationConfig{}, false
}

// DSN returns the appropriate DSN for the configured storage driver.
func (c *Config) DSN() string {
	switch c.Storage.Driver {
	case "sqlite":
		return c.Storage.SQLite.Path
	case "postgres":
		return c.Storage.Postgres.DSN
	default:
		return ""
	}
}
