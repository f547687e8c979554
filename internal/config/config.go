package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix               = "FILMFOLIO"
	defaultHTTPAddress      = "0.0.0.0:8080"
	defaultDatabasePath     = "filmfolio.db"
	defaultStoreDriver      = StoreDriverSQLite
	defaultRedisPrefix      = "filmfolio:"
	defaultTMDBBaseURL      = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL = "https://image.tmdb.org/t/p"
	defaultTMDBTimeout      = 10
	defaultLogLevel         = "info"
)

// Supported store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

// AppConfig captures runtime configuration for the API server and CLI.
type AppConfig struct {
	HTTPAddress      string
	DatabasePath     string
	StoreDriver      string
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
	RedisPrefix      string
	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string
	TMDBTimeout      time.Duration
	LogLevel         string
	LogFile          string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("store.driver", defaultStoreDriver)
	configViper.SetDefault("redis.prefix", defaultRedisPrefix)
	configViper.SetDefault("redis.db", 0)
	configViper.SetDefault("tmdb.base_url", defaultTMDBBaseURL)
	configViper.SetDefault("tmdb.image_base_url", defaultTMDBImageBaseURL)
	configViper.SetDefault("tmdb.timeout_seconds", defaultTMDBTimeout)
	configViper.SetDefault("log.level", defaultLogLevel)
}

// Load parses runtime configuration from viper. The catalog API key is not
// required here; commands that talk to the catalog check it themselves.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:      configViper.GetString("http.address"),
		DatabasePath:     configViper.GetString("database.path"),
		StoreDriver:      strings.ToLower(strings.TrimSpace(configViper.GetString("store.driver"))),
		RedisAddress:     configViper.GetString("redis.address"),
		RedisPassword:    configViper.GetString("redis.password"),
		RedisDB:          configViper.GetInt("redis.db"),
		RedisPrefix:      configViper.GetString("redis.prefix"),
		TMDBAPIKey:       configViper.GetString("tmdb.api_key"),
		TMDBBaseURL:      configViper.GetString("tmdb.base_url"),
		TMDBImageBaseURL: configViper.GetString("tmdb.image_base_url"),
		TMDBTimeout:      time.Duration(configViper.GetInt("tmdb.timeout_seconds")) * time.Second,
		LogLevel:         configViper.GetString("log.level"),
		LogFile:          configViper.GetString("log.file"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// RequireCatalog reports whether the catalog settings are usable.
func (c AppConfig) RequireCatalog() error {
	if strings.TrimSpace(c.TMDBAPIKey) == "" {
		return fmt.Errorf("tmdb.api_key is required")
	}
	return nil
}

func (c AppConfig) validate() error {
	switch c.StoreDriver {
	case StoreDriverSQLite:
		if strings.TrimSpace(c.DatabasePath) == "" {
			return fmt.Errorf("database.path is required")
		}
	case StoreDriverRedis:
		if strings.TrimSpace(c.RedisAddress) == "" {
			return fmt.Errorf("redis.address is required when store.driver is redis")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("store.driver %q is not supported", c.StoreDriver)
	}
	if strings.TrimSpace(c.TMDBBaseURL) == "" {
		return fmt.Errorf("tmdb.base_url is required")
	}
	if c.TMDBTimeout <= 0 {
		return fmt.Errorf("tmdb.timeout_seconds must be positive")
	}
	return nil
}
