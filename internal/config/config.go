package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Checkout   CheckoutConfig   `mapstructure:"checkout" validate:"required"`
	Returns    ReturnsConfig    `mapstructure:"returns"`
	Events     EventsConfig     `mapstructure:"events"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

type CacheConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	DefaultTTLMinutes int  `mapstructure:"default_ttl_minutes" validate:"gte=0"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

type AuthConfig struct {
	AdminAPIKey AdminAPIKeyConfig `mapstructure:"admin_api_key"`
}

// AdminAPIKeyConfig holds the keys accepted on the admin route group.
// From the environment Keys is a comma separated list.
type AdminAPIKeyConfig struct {
	Header string   `mapstructure:"header"`
	Keys   []string `mapstructure:"keys"`
}

type CheckoutConfig struct {
	ShippingCostCents          int64  `mapstructure:"shipping_cost_cents" validate:"gte=0"`
	FreeShippingThresholdCents int64  `mapstructure:"free_shipping_threshold_cents" validate:"gte=0"`
	Currency                   string `mapstructure:"currency" validate:"required,len=3"`
}

type ReturnsConfig struct {
	CompletionMaxRetries      uint64 `mapstructure:"completion_max_retries"`
	CompletionRetryIntervalMs int    `mapstructure:"completion_retry_interval_ms" validate:"gte=0"`
}

type EventsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shopfront")

	v.SetEnvPrefix("SHOPFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can override it without a config file
func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("deployment.mode", d.Deployment.Mode)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("postgres.host", d.Postgres.Host)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.user", d.Postgres.User)
	v.SetDefault("postgres.password", d.Postgres.Password)
	v.SetDefault("postgres.dbname", d.Postgres.DBName)
	v.SetDefault("postgres.sslmode", d.Postgres.SSLMode)
	v.SetDefault("postgres.max_open_conns", d.Postgres.MaxOpenConns)
	v.SetDefault("postgres.max_idle_conns", d.Postgres.MaxIdleConns)
	v.SetDefault("postgres.conn_max_lifetime_minutes", d.Postgres.ConnMaxLifetimeMinutes)
	v.SetDefault("postgres.auto_migrate", d.Postgres.AutoMigrate)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.default_ttl_minutes", d.Cache.DefaultTTLMinutes)
	v.SetDefault("sentry.enabled", d.Sentry.Enabled)
	v.SetDefault("sentry.sample_rate", d.Sentry.SampleRate)
	v.SetDefault("auth.admin_api_key.header", d.Auth.AdminAPIKey.Header)
	v.SetDefault("checkout.shipping_cost_cents", d.Checkout.ShippingCostCents)
	v.SetDefault("checkout.free_shipping_threshold_cents", d.Checkout.FreeShippingThresholdCents)
	v.SetDefault("checkout.currency", d.Checkout.Currency)
	v.SetDefault("returns.completion_max_retries", d.Returns.CompletionMaxRetries)
	v.SetDefault("returns.completion_retry_interval_ms", d.Returns.CompletionRetryIntervalMs)
	v.SetDefault("events.enabled", d.Events.Enabled)
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("ratelimit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("ratelimit.burst", d.RateLimit.Burst)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// and for scripts or tests that do not read a config file.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Postgres: PostgresConfig{
			Host:                   "localhost",
			Port:                   5432,
			User:                   "shopfront",
			Password:               "shopfront",
			DBName:                 "shopfront",
			SSLMode:                "disable",
			MaxOpenConns:           10,
			MaxIdleConns:           5,
			ConnMaxLifetimeMinutes: 60,
		},
		Cache: CacheConfig{Enabled: true, DefaultTTLMinutes: 30},
		Auth: AuthConfig{
			AdminAPIKey: AdminAPIKeyConfig{Header: types.HeaderAdminAPIKey},
		},
		Checkout: CheckoutConfig{
			ShippingCostCents:          495,
			FreeShippingThresholdCents: 0,
			Currency:                   "EUR",
		},
		Returns: ReturnsConfig{
			CompletionMaxRetries:      3,
			CompletionRetryIntervalMs: 50,
		},
		Events:    EventsConfig{Enabled: true, Topic: "shopfront.returns"},
		RateLimit: RateLimitConfig{RequestsPerSecond: 20, Burst: 40},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}

func (c PostgresConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLMinutes) * time.Minute
}

func (c ReturnsConfig) CompletionRetryInterval() time.Duration {
	return time.Duration(c.CompletionRetryIntervalMs) * time.Millisecond
}
