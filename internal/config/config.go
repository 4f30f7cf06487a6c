package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "pvcommunity/libs/config"
)

// HTTPConfig covers the listener and CORS surface.
type HTTPConfig struct {
	Port        string   `yaml:"port" env:"COMMUNITY_HTTP_PORT"`
	CORSOrigins []string `yaml:"corsOrigins" env:"COMMUNITY_CORS_ORIGINS"`
}

// DatabaseConfig covers Postgres. Pool sizes of zero use the db package
// defaults.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"COMMUNITY_POSTGRES_DSN"`
	MaxOpenConns int    `yaml:"maxOpenConns" env:"COMMUNITY_POSTGRES_MAX_OPEN"`
	MaxIdleConns int    `yaml:"maxIdleConns" env:"COMMUNITY_POSTGRES_MAX_IDLE"`
}

// RedisConfig covers cache and rate limit storage. An empty addr disables
// both; the service then recomputes on every request and skips throttling.
type RedisConfig struct {
	Addr            string `yaml:"addr" env:"COMMUNITY_REDIS_ADDR"`
	Password        string `yaml:"password" env:"COMMUNITY_REDIS_PASSWORD"`
	DB              int    `yaml:"db" env:"COMMUNITY_REDIS_DB"`
	CacheTTLSeconds int    `yaml:"cacheTtlSeconds" env:"COMMUNITY_CACHE_TTL"`
}

// LimitsConfig covers the write-side abuse guards.
type LimitsConfig struct {
	SubmitPerHour   int `yaml:"submitPerHour" env:"COMMUNITY_SUBMIT_PER_HOUR"`
	UpdatesPerMonth int `yaml:"updatesPerMonth" env:"COMMUNITY_UPDATES_PER_MONTH"`
}

// SecretsConfig covers the hash and share token keys.
type SecretsConfig struct {
	HashSecret       string `yaml:"hashSecret" env:"COMMUNITY_HASH_SECRET"`
	ShareTokenSecret string `yaml:"shareTokenSecret" env:"COMMUNITY_SHARE_TOKEN_SECRET"`
	ShareTokenDays   int    `yaml:"shareTokenDays" env:"COMMUNITY_SHARE_TOKEN_DAYS"`
}

// KafkaConfig covers the bulk ingest pipeline. Empty brokers disable it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"COMMUNITY_KAFKA_BROKERS"`
	GroupID string   `yaml:"groupId" env:"COMMUNITY_KAFKA_GROUP_ID"`
	Topic   string   `yaml:"topic" env:"COMMUNITY_KAFKA_TOPIC"`
}

// Config defines community service configuration.
type Config struct {
	LogLevel string         `yaml:"logLevel" env:"COMMUNITY_LOG_LEVEL"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Limits   LimitsConfig   `yaml:"limits"`
	Secrets  SecretsConfig  `yaml:"secrets"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Port:        "8080",
			CORSOrigins: []string{"*"},
		},
		Redis: RedisConfig{
			CacheTTLSeconds: 300,
		},
		Limits: LimitsConfig{
			SubmitPerHour:   10,
			UpdatesPerMonth: 12,
		},
		Secrets: SecretsConfig{
			ShareTokenDays: 365,
		},
		Kafka: KafkaConfig{
			GroupID: "pvcommunity",
			Topic:   "pv.submissions",
		},
	}

	if err := libconfig.Load(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Secrets.HashSecret) == "" {
		return nil, errors.New("config: hash secret required")
	}
	if strings.TrimSpace(cfg.Secrets.ShareTokenSecret) == "" {
		cfg.Secrets.ShareTokenSecret = cfg.Secrets.HashSecret
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// CacheTTL returns ttl as duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Redis.CacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// ShareTokenTTL returns token lifetime as duration.
func (c *Config) ShareTokenTTL() time.Duration {
	if c.Secrets.ShareTokenDays <= 0 {
		return 365 * 24 * time.Hour
	}
	return time.Duration(c.Secrets.ShareTokenDays) * 24 * time.Hour
}
