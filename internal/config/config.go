package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string          `yaml:"port"`
	Debug          bool            `yaml:"debug"`
	DatabaseURL    string          `yaml:"database_url"`
	RedisAddr      string          `yaml:"redis_addr"`
	BaseURL        string          `yaml:"base_url"`
	SessionSecret  string          `yaml:"session_secret"`
	TrustedProxies []string        `yaml:"trusted_proxies"`
	Routes         RoutesConfig    `yaml:"routes"`
	RateLimitAPI   RateLimitConfig `yaml:"rate_limit_api"`
	RateLimitAuth  RateLimitConfig `yaml:"rate_limit_auth"`
}

// RoutesConfig holds the collection path segment of each entity, so
// deployments can rename them without touching code. Pagination links are
// built from BaseURL plus these segments.
type RoutesConfig struct {
	Users            string `yaml:"users"`
	UserGroups       string `yaml:"user_groups"`
	Permissions      string `yaml:"permissions"`
	GroupPermissions string `yaml:"group_permissions"`
	UserPermissions  string `yaml:"user_permissions"`
	Contents         string `yaml:"contents"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	Enabled           bool          `yaml:"enabled"`
	CacheSize         int           `yaml:"cache_size"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
}

func Load() (Config, error) {
	return LoadFromPath("config.yaml")
}

func LoadFromPath(path string) (Config, error) {
	cfg := NewDefaultConfig()

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, err
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	if err := cfg.ensureSessionSecret(); err != nil {
		return cfg, err
	}

	cfg.LoadEnv()

	return cfg, nil
}

func NewDefaultConfig() Config {
	return Config{
		Port:      "8080",
		Debug:     false,
		RedisAddr: "localhost:6379",
		BaseURL:   "http://localhost:8080/api",
		Routes: RoutesConfig{
			Users:            "users",
			UserGroups:       "user-groups",
			Permissions:      "permissions",
			GroupPermissions: "group-permissions",
			UserPermissions:  "user-permissions",
			Contents:         "contents",
		},
		RateLimitAPI: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Enabled:           true,
			CacheSize:         5000,
			CacheTTL:          1 * time.Hour,
		},
		RateLimitAuth: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			Enabled:           true,
			CacheSize:         5000,
			CacheTTL:          1 * time.Hour,
		},
	}
}

func (c *Config) LoadEnv() {
	if envPort := os.Getenv("PORT"); envPort != "" {
		c.Port = envPort
	}
	if envDB := os.Getenv("DATABASE_URL"); envDB != "" {
		c.DatabaseURL = envDB
	}
	if envRedis := os.Getenv("REDIS_ADDR"); envRedis != "" {
		c.RedisAddr = envRedis
	}
	if envBase := os.Getenv("BASE_URL"); envBase != "" {
		c.BaseURL = envBase
	}
	if envSecret := os.Getenv("SESSION_SECRET"); envSecret != "" {
		c.SessionSecret = envSecret
	}
}

func (c *Config) ensureSessionSecret() error {
	if c.SessionSecret != "" {
		return nil
	}

	slog.Warn("Session secret not found, generating a random ephemeral one. SESSIONS WILL NOT SURVIVE A RESTART.")

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return fmt.Errorf("failed to generate session secret: %w", err)
	}
	c.SessionSecret = base64.StdEncoding.EncodeToString(secretBytes)

	return nil
}
