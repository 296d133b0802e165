package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	PGN         PGNConfig         `mapstructure:"pgn"`
	Archive     ArchiveConfig     `mapstructure:"archive"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
}

// PGNConfig holds the header values new games start with.
type PGNConfig struct {
	Event string `mapstructure:"event"`
	Site  string `mapstructure:"site"`
	Round string `mapstructure:"round"`
	White string `mapstructure:"white"`
	Black string `mapstructure:"black"`
}

type ArchiveConfig struct {
	Backend       string        `mapstructure:"backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

func Load() (*Config, error) {
	return LoadFrom(viper.New(), ".", "./config")
}

// LoadFrom reads config.yaml from the first of paths that has one, then
// applies OTBCHESS_* environment overrides on top of the defaults.
func LoadFrom(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Enable environment variables
	v.SetEnvPrefix("OTBCHESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No file; defaults and environment still apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "./web/static")
	v.SetDefault("pgn.event", "OTB")
	v.SetDefault("pgn.site", "?")
	v.SetDefault("pgn.round", "?")
	v.SetDefault("pgn.white", "White")
	v.SetDefault("pgn.black", "Black")
	v.SetDefault("archive.backend", BackendMemory)
	v.SetDefault("archive.redis_addr", "localhost:6379")
	v.SetDefault("archive.redis_password", "")
	v.SetDefault("archive.redis_db", 0)
	v.SetDefault("archive.ttl", 24*time.Hour)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")
}

func (c *Config) Validate() error {
	switch c.Archive.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unknown archive backend %q", c.Archive.Backend)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// Addr is the host:port the server listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
