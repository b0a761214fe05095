// Package config provides configuration management for the race photo sync service.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Service modes selecting how new photos enter the system
const (
	ServiceModePush    = "push"
	ServiceModePull    = "pull"
	ServiceModeStorage = "storage"
	ServiceModeCapture = "capture"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Event    EventConfig    `mapstructure:"event"`
	Service  ServiceConfig  `mapstructure:"service" validate:"required"`
	Google   GoogleConfig   `mapstructure:"google" validate:"required"`
	Vision   VisionConfig   `mapstructure:"vision" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// EventConfig selects the event to synchronize when several exist
type EventConfig struct {
	ID string `mapstructure:"id"`
}

// ServiceConfig represents the polling service configuration
type ServiceConfig struct {
	DefaultMode         string `mapstructure:"default_mode" validate:"required,servicemode"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
	StatusInterval      int    `mapstructure:"status_interval" validate:"required,gt=0"`
	PhotosPath          string `mapstructure:"photos_path" validate:"required"`
	CapturesPath        string `mapstructure:"captures_path" validate:"required"`
	CycleTimeoutSeconds int    `mapstructure:"cycle_timeout_seconds" validate:"required,gt=0"`
}

// GoogleConfig represents Google Cloud storage and messaging configuration
type GoogleConfig struct {
	ProjectID            string `mapstructure:"project_id" validate:"required"`
	CredentialsFile      string `mapstructure:"credentials_file"`
	CredentialsJSON      string `mapstructure:"credentials_json"`
	StorageBucket        string `mapstructure:"storage_bucket" validate:"required"`
	StorageServer        string `mapstructure:"storage_server" validate:"required,url"`
	PubSubTopicID        string `mapstructure:"pubsub_topic_id"`
	PubSubSubscriptionID string `mapstructure:"pubsub_subscription_id"`
	PubSubNumMessages    int    `mapstructure:"pubsub_num_messages" validate:"required,gt=0"`
	Endpoint             string `mapstructure:"endpoint"`
}

// VisionConfig represents the image analysis client configuration
type VisionConfig struct {
	Endpoint              string  `mapstructure:"endpoint"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RateLimit             float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// CacheConfig represents event setting cache configuration
type CacheConfig struct {
	SettingsTTLSeconds int `mapstructure:"settings_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// PollInterval returns the delay between service loop ticks
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Service.PollIntervalSeconds) * time.Second
}

// SettingsTTL returns how long event settings are cached
func (c *Config) SettingsTTL() time.Duration {
	return time.Duration(c.Cache.SettingsTTLSeconds) * time.Second
}

// NormalizeServiceMode maps "PUSH", "Push" and "push" to the same mode
func NormalizeServiceMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
