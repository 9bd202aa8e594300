package common

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. XLTABLES_SERVER_GRPC_ADDR.
const EnvPrefix = "XLTABLES"

// Config holds all application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Segmentation SegmentationConfig `mapstructure:"segmentation" yaml:"segmentation"`
	Ingest       IngestConfig       `mapstructure:"ingest" yaml:"ingest"`
	Database     DatabaseConfig     `mapstructure:"database" yaml:"database"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr      string `mapstructure:"grpc_addr" yaml:"grpc_addr"`
	MaxUploadSize int    `mapstructure:"max_upload_size" yaml:"max_upload_size"`
	Reflection    bool   `mapstructure:"reflection" yaml:"reflection"`
}

// SegmentationConfig tunes how tables are carved out of a sheet.
type SegmentationConfig struct {
	// CatalogPath points at a YAML or JSON title catalog; empty uses the built-in titles.
	CatalogPath      string  `mapstructure:"catalog_path" yaml:"catalog_path"`
	MaxEmptyRowRatio float64 `mapstructure:"max_empty_row_ratio" yaml:"max_empty_row_ratio"`
	MaxEmptyColRatio float64 `mapstructure:"max_empty_col_ratio" yaml:"max_empty_col_ratio"`
	MaxBlankStreak   int     `mapstructure:"max_blank_streak" yaml:"max_blank_streak"`
	MinRows          int     `mapstructure:"min_rows" yaml:"min_rows"`
	MinCols          int     `mapstructure:"min_cols" yaml:"min_cols"`
}

// IngestConfig controls how workbooks are read and where they come from.
type IngestConfig struct {
	Sheet     string        `mapstructure:"sheet" yaml:"sheet"`
	Formatted bool          `mapstructure:"formatted" yaml:"formatted"`
	WatchDir  string        `mapstructure:"watch_dir" yaml:"watch_dir"`
	Debounce  time.Duration `mapstructure:"debounce" yaml:"debounce"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// DatabaseConfig holds database-related configuration. An empty DSN disables
// ingestion history.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn" yaml:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns" yaml:"max_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime" yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time" yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			GRPCAddr:      ":8080",
			MaxUploadSize: 32 << 20,
			Reflection:    true,
		},
		Segmentation: SegmentationConfig{
			MaxEmptyRowRatio: 0.6,
			MaxEmptyColRatio: 0.6,
			MaxBlankStreak:   1,
			MinRows:          2,
			MinCols:          2,
		},
		Ingest: IngestConfig{
			Debounce: 500 * time.Millisecond,
			Timeout:  time.Minute,
		},
		Database: DatabaseConfig{
			MaxConns:        10,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig layers defaults, the optional config file and XLTABLES_*
// environment variables, in that order. A missing cfgFile is only an error
// when it was named explicitly.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("xltables")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.xltables")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, NewAppError("CONFIG_ERROR", "error reading config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "failed to unmarshal config", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override nested fields.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.grpc_addr", d.Server.GRPCAddr)
	v.SetDefault("server.max_upload_size", d.Server.MaxUploadSize)
	v.SetDefault("server.reflection", d.Server.Reflection)

	v.SetDefault("segmentation.catalog_path", d.Segmentation.CatalogPath)
	v.SetDefault("segmentation.max_empty_row_ratio", d.Segmentation.MaxEmptyRowRatio)
	v.SetDefault("segmentation.max_empty_col_ratio", d.Segmentation.MaxEmptyColRatio)
	v.SetDefault("segmentation.max_blank_streak", d.Segmentation.MaxBlankStreak)
	v.SetDefault("segmentation.min_rows", d.Segmentation.MinRows)
	v.SetDefault("segmentation.min_cols", d.Segmentation.MinCols)

	v.SetDefault("ingest.sheet", d.Ingest.Sheet)
	v.SetDefault("ingest.formatted", d.Ingest.Formatted)
	v.SetDefault("ingest.watch_dir", d.Ingest.WatchDir)
	v.SetDefault("ingest.debounce", d.Ingest.Debounce)
	v.SetDefault("ingest.timeout", d.Ingest.Timeout)

	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.max_conns", d.Database.MaxConns)
	v.SetDefault("database.max_conn_lifetime", d.Database.MaxConnLifetime)
	v.SetDefault("database.max_conn_idle_time", d.Database.MaxConnIdleTime)
	v.SetDefault("database.dial_timeout", d.Database.DialTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("server.grpc_addr", c.Server.GRPCAddr, Required).
		Field("server.max_upload_size", c.Server.MaxUploadSize, AtLeast(1)).
		Field("segmentation.max_empty_row_ratio", c.Segmentation.MaxEmptyRowRatio, Between(0, 1)).
		Field("segmentation.max_empty_col_ratio", c.Segmentation.MaxEmptyColRatio, Between(0, 1)).
		Field("segmentation.max_blank_streak", c.Segmentation.MaxBlankStreak, AtLeast(0)).
		Field("segmentation.min_rows", c.Segmentation.MinRows, AtLeast(1)).
		Field("segmentation.min_cols", c.Segmentation.MinCols, AtLeast(1)).
		Field("log.level", c.Log.Level, OneOf("debug", "info", "warn", "error")).
		Field("log.format", c.Log.Format, OneOf("text", "json"))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrValidation)
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("grpc_addr=%s catalog=%q watch_dir=%q history=%t",
		c.Server.GRPCAddr, c.Segmentation.CatalogPath, c.Ingest.WatchDir, c.Database.DSN != "")
}
