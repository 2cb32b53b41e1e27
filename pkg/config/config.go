package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Events    EventsConfig    `mapstructure:"events"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type AuthConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	ServiceSecret string `mapstructure:"service_secret"`
	ServiceName   string `mapstructure:"service_name"`
}

type PolicyConfig struct {
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
	Backend string        `mapstructure:"backend"`
}

type RateLimitConfig struct {
	// Store selects the durable counter backend: "postgres" or "redis".
	Store        string                  `mapstructure:"store"`
	StoreTimeout time.Duration           `mapstructure:"store_timeout"`
	Policies     map[string]PolicyConfig `mapstructure:"policies"`
}

// PolicyOverrides lists the configured policies by name. Unset fields are
// left zero so the built-in defaults apply.
func (c RateLimitConfig) PolicyOverrides() []ratelimit.Policy {
	names := make([]string, 0, len(c.Policies))
	for name := range c.Policies {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ratelimit.Policy, 0, len(names))
	for _, name := range names {
		p := c.Policies[name]
		out = append(out, ratelimit.Policy{
			Name:    name,
			Limit:   p.Limit,
			Window:  p.Window,
			Backend: ratelimit.Backend(p.Backend),
		})
	}
	return out
}

type QueueConfig struct {
	BatchSize           int           `mapstructure:"batch_size"`
	MaxBatchSize        int           `mapstructure:"max_batch_size"`
	BaseDelay           time.Duration `mapstructure:"base_delay"`
	ClaimTimeout        time.Duration `mapstructure:"claim_timeout"`
	DispatchConcurrency int           `mapstructure:"dispatch_concurrency"`
}

type ProvidersConfig struct {
	Email EmailProviderConfig `mapstructure:"email"`
	SMS   SMSProviderConfig   `mapstructure:"sms"`
}

type EmailProviderConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	From          string        `mapstructure:"from"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

type SMSProviderConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	AccountSID    string        `mapstructure:"account_sid"`
	AuthToken     string        `mapstructure:"auth_token"`
	From          string        `mapstructure:"from"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
}

type EventsConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

var globalConfig Config

func Load(configPath string) error {
	v := viper.New()
	setDefaultValues(v)
	globalConfig = Config{}
	if err := loadConfigFile(v, configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	return nil
}

func loadConfigFile(v *viper.Viper, configPath, fileName string, out interface{}) error {
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(out, hook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}
	return nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("metrics.enabled", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "backbone")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)

	v.SetDefault("auth.secret_key", "")
	v.SetDefault("auth.service_secret", "")
	v.SetDefault("auth.service_name", "internal")

	v.SetDefault("rate_limit.store", "postgres")
	v.SetDefault("rate_limit.store_timeout", "250ms")

	v.SetDefault("queue.batch_size", 50)
	v.SetDefault("queue.max_batch_size", 100)
	v.SetDefault("queue.base_delay", "1m")
	v.SetDefault("queue.claim_timeout", "10m")
	v.SetDefault("queue.dispatch_concurrency", 4)

	v.SetDefault("providers.email.base_url", "")
	v.SetDefault("providers.email.api_key", "")
	v.SetDefault("providers.email.from", "")
	v.SetDefault("providers.email.timeout", "10s")
	v.SetDefault("providers.email.rate_per_second", 10)
	v.SetDefault("providers.sms.base_url", "")
	v.SetDefault("providers.sms.account_sid", "")
	v.SetDefault("providers.sms.auth_token", "")
	v.SetDefault("providers.sms.from", "")
	v.SetDefault("providers.sms.timeout", "10s")
	v.SetDefault("providers.sms.rate_per_second", 5)

	v.SetDefault("events.kafka.enabled", false)
	v.SetDefault("events.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("events.kafka.topic", "notification-outcomes")
}

func GetConfig() *Config {
	return &globalConfig
}
