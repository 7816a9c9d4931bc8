package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Admin struct {
		Secret string `yaml:"secret"`
	} `yaml:"admin"`
	Log Log `yaml:"log"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	File   string `yaml:"file"`   // optional rotating file sink
}

// DefaultAdminSecret is used when no admin secret is configured.
const DefaultAdminSecret = "1234"

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Store.Timeout = "5s"
	cfg.Cache.TTL = "10m"
	cfg.Admin.Secret = DefaultAdminSecret
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// Load reads YAML config from path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOptional is Load, but a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Postgres.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if v, ok := os.LookupEnv("REDIS_DB"); ok {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	setString(&c.Admin.Secret, "QUIZ_ADMIN_SECRET")
	setString(&c.Log.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
