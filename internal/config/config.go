package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultSecret matches the legacy server so tokens it issued stay valid.
// Deployments are expected to override it.
const DefaultSecret = "your-secret-key-change-in-production"

type Config struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	Secret        string        `yaml:"secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	SecureCookies bool          `yaml:"secure_cookies"`

	StoreDriver   string `yaml:"store_driver"`
	DataFile      string `yaml:"data_file"`
	DBDSN         string `yaml:"db_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisKey      string `yaml:"redis_key"`

	UploadDir      string `yaml:"upload_dir"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`

	CORSOrigins []string `yaml:"cors_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           "8001",
		Secret:         DefaultSecret,
		TokenTTL:       7 * 24 * time.Hour,
		StoreDriver:    "json",
		DataFile:       "data.json",
		UploadDir:      "uploads",
		MaxUploadBytes: 50 << 20,
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Load reads a YAML file on top of the defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
// Unreadable or malformed files are still errors.
func LoadOrDefault(filename string) (cfg *Config, defaulted bool, err error) {
	cfg, err = Load(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load config %s: %w", filename, err)
	}
	return cfg, false, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("HOST", &c.Host)
	str("PORT", &c.Port)
	str("SECRET_KEY", &c.Secret)
	str("STORE_DRIVER", &c.StoreDriver)
	str("DATA_FILE", &c.DataFile)
	str("DB_DSN", &c.DBDSN)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PASSWORD", &c.RedisPassword)
	str("UPLOAD_DIR", &c.UploadDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup("TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.TokenTTL = d
	}
	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSOrigins = origins
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Secret == "" {
		return errors.New("secret is required")
	}
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.UploadDir == "" {
		return errors.New("upload_dir is required")
	}
	if c.MaxUploadBytes < 0 {
		return errors.New("max_upload_bytes must not be negative")
	}
	switch c.StoreDriver {
	case "json":
		if c.DataFile == "" {
			return errors.New("data_file is required for the json store")
		}
	case "sqlite3", "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("db_dsn is required for the %s store", c.StoreDriver)
		}
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis store")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	return nil
}

func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
