package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/declschema/internal/schema/store"
)

// EnvPrefix prefixes environment variables that override configuration,
// e.g. DECLSCHEMA_STORE_BACKEND.
const EnvPrefix = "DECLSCHEMA"

// configNames are the file names searched for when no path is given.
var configNames = []string{"declschema.yml", "declschema.yaml"}

// Config represents the declschema configuration
type Config struct {
	LogLevel string      `mapstructure:"log_level"`
	Indent   string      `mapstructure:"indent"`
	Store    StoreConfig `mapstructure:"store"`
}

// StoreConfig represents schema store configuration
type StoreConfig struct {
	Backend  string      `mapstructure:"backend"`
	Dir      string      `mapstructure:"dir"`
	Compress bool        `mapstructure:"compress"`
	Prefix   string      `mapstructure:"prefix"`
	Redis    RedisConfig `mapstructure:"redis"`
	SQL      SQLConfig   `mapstructure:"sql"`
}

// RedisConfig represents the redis backend configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SQLConfig represents the sql backend configuration
type SQLConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Table  string `mapstructure:"table"`
}

func setDefaults(v *viper.Viper) {
	defaults := store.DefaultConfig()

	v.SetDefault("log_level", "info")
	v.SetDefault("indent", "  ")
	v.SetDefault("store.backend", defaults.Backend)
	v.SetDefault("store.dir", defaults.Dir)
	v.SetDefault("store.compress", true)
	v.SetDefault("store.prefix", defaults.Prefix)
	v.SetDefault("store.redis.addr", defaults.Redis.Addr)
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", defaults.Redis.DB)
	v.SetDefault("store.sql.driver", defaults.SQL.Driver)
	v.SetDefault("store.sql.dsn", defaults.SQL.DSN)
	v.SetDefault("store.sql.table", defaults.SQL.Table)
}

// Load reads configuration from path, or from the nearest declschema.yml
// when path is empty. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if found, err := FindConfigFile(); err == nil {
			path = found
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ErrNoConfigFile is returned by FindConfigFile when no file is found.
var ErrNoConfigFile = errors.New("no declschema.yml found")

// FindConfigFile looks for declschema.yml or declschema.yaml in the working
// directory and its parents.
func FindConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfigFile
		}
		dir = parent
	}
}

// StoreOptions converts the store section to the store package's Config.
func (c *Config) StoreOptions() store.Config {
	return store.Config{
		Backend: c.Store.Backend,
		Dir:     c.Store.Dir,
		Prefix:  c.Store.Prefix,
		Redis: store.RedisConfig{
			Addr:     c.Store.Redis.Addr,
			Password: c.Store.Redis.Password,
			DB:       c.Store.Redis.DB,
		},
		SQL: store.SQLConfig{
			Driver: c.Store.SQL.Driver,
			DSN:    c.Store.SQL.DSN,
			Table:  c.Store.SQL.Table,
		},
	}
}

// Level parses LogLevel.
func (c *Config) Level() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("log_level must be one of debug, info, warn, error, got: %s", c.LogLevel)
	}
	return level, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := cfg.Level(); err != nil {
		return err
	}

	if cfg.Indent == "" {
		return fmt.Errorf("indent must not be empty")
	}

	if strings.Trim(cfg.Indent, " \t") != "" {
		return fmt.Errorf("indent may only contain spaces and tabs, got: %q", cfg.Indent)
	}

	if !contains(store.Backends, cfg.Store.Backend) {
		return fmt.Errorf("store.backend must be one of %s, got: %s",
			strings.Join(store.Backends, ", "), cfg.Store.Backend)
	}

	if cfg.Store.Backend == store.BackendSQL && !contains(store.Drivers, cfg.Store.SQL.Driver) {
		return fmt.Errorf("store.sql.driver must be one of %s, got: %s",
			strings.Join(store.Drivers, ", "), cfg.Store.SQL.Driver)
	}

	if cfg.Store.Backend == store.BackendFile && cfg.Store.Dir == "" {
		return fmt.Errorf("store.dir is required for the file backend")
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
