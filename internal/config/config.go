package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DOCVAULT_DB_DSN.
const EnvPrefix = "DOCVAULT"

// Config holds application level configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Swagger SwaggerConfig `mapstructure:"swagger"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	BodyLimit       string        `mapstructure:"body_limit"`
	Debug           bool          `mapstructure:"debug"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReloadConfig    bool          `mapstructure:"reload_config"`
}

// DBConfig selects the database driver and pool settings.
type DBConfig struct {
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
	Reset        bool   `mapstructure:"reset"`
}

// RedisConfig configures the optional user cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Runtime bool `mapstructure:"runtime"`
}

// SwaggerConfig holds the host advertised in the API docs.
type SwaggerConfig struct {
	Host string `mapstructure:"host"`
}

// SeedConfig describes the administrator created by cmd/seed.
type SeedConfig struct {
	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// CacheEnabled reports whether a Redis address is configured.
func (r RedisConfig) CacheEnabled() bool {
	return r.Addr != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.body_limit", "50M")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.reload_config", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "file:docvault.db?_pragma=foreign_keys(1)")
	v.SetDefault("db.max_open_conns", 0)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.reset", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.enable_file", false)
	v.SetDefault("log.file_path", "logs/docvault.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.runtime", true)

	v.SetDefault("swagger.host", "")

	v.SetDefault("seed.admin_username", "admin")
	v.SetDefault("seed.admin_email", "admin@localhost")
	v.SetDefault("seed.admin_password", "")
}

// Load builds Config from defaults, an optional config file, a .env file
// and DOCVAULT_* environment variables, in increasing priority.
// path may be empty, a file, or a directory containing config.{yaml,json,toml}.
func Load(path string) (*Config, *viper.Viper, error) {
	// a missing .env is the normal case outside development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := resolveConfigFile(path); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("config: server.port is required")
	}
	if c.DB.DSN == "" {
		return errors.New("config: db.dsn is required")
	}
	if c.DB.Driver == "" {
		return errors.New("config: db.driver is required")
	}
	return nil
}

// Watch re-reads the config file on change and hands the new values to fn.
// It is a no-op when no file is in use.
func Watch(v *viper.Viper, fn func(*Config)) {
	if v == nil || v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(_ fsnotify.Event) {
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			return
		}
		fn(&cfg)
	})
	v.WatchConfig()
}

func resolveConfigFile(path string) string {
	if path == "" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	if !info.IsDir() {
		return path
	}
	for _, ext := range []string{"yaml", "yml", "json", "toml"} {
		candidate := filepath.Join(path, "config."+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
