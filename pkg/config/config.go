// Package config loads fieldblocks settings with viper.
//
// Settings come, lowest priority first, from built-in defaults, a
// fieldblocks.yaml file (searched in "." and "./configs" unless a path is
// given), an optional .env file and FIELDBLOCKS_ prefixed environment
// variables such as FIELDBLOCKS_STORAGE_DRIVER.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FIELDBLOCKS"

// Storage drivers accepted in StorageConfig.Driver.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Render  RenderConfig  `mapstructure:"render"`
	Storage StorageConfig `mapstructure:"storage"`
	HTTP    HTTPConfig    `mapstructure:"http"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RenderConfig struct {
	// BlocksDir holds block type definition files (YAML or JSON).
	BlocksDir string `mapstructure:"blocks_dir"`
	// TemplatesDir holds block templates referenced by name.
	TemplatesDir      string `mapstructure:"templates_dir"`
	TemplateExtension string `mapstructure:"template_extension"`
	InlineEditing     bool   `mapstructure:"inline_editing"`
}

type StorageConfig struct {
	Driver string      `mapstructure:"driver"`
	Redis  RedisConfig `mapstructure:"redis"`
	SQL    SQLConfig   `mapstructure:"sql"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type SQLConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

type HTTPConfig struct {
	Address     string `mapstructure:"address"`
	MetricsPath string `mapstructure:"metrics_path"`
}

// Option customises Load.
type Option func(*loader)

type loader struct {
	file    string
	envFile string
	v       *viper.Viper
}

// WithFile reads settings from path instead of searching for
// fieldblocks.yaml.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = strings.TrimSpace(path)
	}
}

// WithEnvFile loads path with godotenv before reading the environment. A
// missing file is ignored.
func WithEnvFile(path string) Option {
	return func(l *loader) {
		l.envFile = strings.TrimSpace(path)
	}
}

// WithViper loads from an existing viper instance, e.g. one with CLI flags
// bound to it.
func WithViper(v *viper.Viper) Option {
	return func(l *loader) {
		if v != nil {
			l.v = v
		}
	}
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("render.blocks_dir", "blocks")
	v.SetDefault("render.templates_dir", "templates")
	v.SetDefault("render.template_extension", ".tpl")
	v.SetDefault("render.inline_editing", true)
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.redis.address", "localhost:6379")
	v.SetDefault("storage.sql.table", "field_values")
	v.SetDefault("http.address", ":8080")
	v.SetDefault("http.metrics_path", "/metrics")
}

// Load resolves the configuration.
func Load(options ...Option) (*Config, error) {
	l := &loader{envFile: ".env"}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	if l.v == nil {
		l.v = viper.New()
	}
	v := l.v

	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load env file %s: %w", l.envFile, err)
		}
	}

	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("fieldblocks")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", c.Log.Format)
	}

	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Storage.Redis.Address == "" {
			return errors.New("storage.redis.address is required for the redis driver")
		}
	case DriverPostgres:
		if c.Storage.SQL.DSN == "" {
			return errors.New("storage.sql.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	if !strings.HasPrefix(c.Render.TemplateExtension, ".") {
		c.Render.TemplateExtension = "." + c.Render.TemplateExtension
	}
	return nil
}
