package configuration

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config is built once at process start and injected into every component.
// Nothing reads ambient configuration state after startup.
type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Mongo       Mongo       `json:"mongo"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Security    Security    `json:"security"`
	OAuth       OAuth       `json:"oauth"`
	RateLimits  RateLimits  `json:"rateLimits"`
	Scheduler   Scheduler   `json:"scheduler"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port      int    `json:"port"`
	SecretKey string `json:"secretKey"`
}

type Database struct {
	// Vendor selects the SQL backend, "psql" or "mssql".
	Vendor string `json:"vendor"`
	Psql   Db     `json:"psql"`
	Mssql  Db     `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

// Mongo is the optional audit trail store. An empty URI disables auditing.
type Mongo struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

// Security holds the symmetric key the credential store encrypts token
// material with. Loaded once, never logged.
type Security struct {
	EncryptionKey string `json:"encryptionKey"`
}

// OAuth holds per-platform client credentials. A platform adapter is only
// registered when its client is configured.
type OAuth struct {
	Twitter   OAuthClient `json:"twitter"`
	LinkedIn  OAuthClient `json:"linkedin"`
	Facebook  OAuthClient `json:"facebook"`
	Instagram OAuthClient `json:"instagram"`
	Reddit    OAuthClient `json:"reddit"`
	YouTube   OAuthClient `json:"youtube"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

// RateLimits overrides individual tier ceilings, keyed by tier name then
// action name. Zero fields keep the built-in value.
type RateLimits struct {
	Tiers map[string]map[string]RateLimit `json:"tiers"`
}

type RateLimit struct {
	Ceiling       int `json:"ceiling"`
	WindowSeconds int `json:"windowSeconds"`
}

type Scheduler struct {
	Workers             int `json:"workers"`
	BatchSize           int `json:"batchSize"`
	PollIntervalSeconds int `json:"pollIntervalSeconds"`
	MaxAttempts         int `json:"maxAttempts"`
	RetryBackoffSeconds int `json:"retryBackoffSeconds"`
}

type Logger struct {
	Format string `json:"format"`
}

// LoadConfig reads config[-ENV].json plus environment overrides and returns
// the fully resolved configuration.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName())
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// No config file is fine; environment variables carry the rest.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func configName() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.App.SecretKey = v
	}
	if v := os.Getenv("ENCRYPTION_KEY"); v != "" {
		cfg.Security.EncryptionKey = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = p
		}
	}

	if v := os.Getenv("DB_VENDOR"); v != "" {
		cfg.Database.Vendor = v
	}
	overrideDb(&cfg.Database.Psql, "DB")
	overrideDb(&cfg.Database.Mssql, "MSSQL")

	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}

	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.RedisClient.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		cfg.RedisClient.Port = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisClient.Password = v
	}
}

func overrideDb(db *Db, prefix string) {
	if v := os.Getenv(prefix + "_NAME"); v != "" {
		db.Name = v
	}
	if v := os.Getenv(prefix + "_HOST"); v != "" {
		db.Host = v
	}
	if v := os.Getenv(prefix + "_PORT"); v != "" {
		db.Port = v
	}
	if v := os.Getenv(prefix + "_USER"); v != "" {
		db.User = v
	}
	if v := os.Getenv(prefix + "_PASSWORD"); v != "" {
		db.Password = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 10001
	}
	if cfg.Database.Vendor == "" {
		cfg.Database.Vendor = "psql"
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "social_scheduler"
	}
	if cfg.RedisClient.Port == "" {
		cfg.RedisClient.Port = "6379"
	}
	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 2
	}
	if cfg.Scheduler.BatchSize <= 0 {
		cfg.Scheduler.BatchSize = 10
	}
	if cfg.Scheduler.PollIntervalSeconds <= 0 {
		cfg.Scheduler.PollIntervalSeconds = 15
	}
	if cfg.Scheduler.MaxAttempts <= 0 {
		cfg.Scheduler.MaxAttempts = 5
	}
	if cfg.Scheduler.RetryBackoffSeconds <= 0 {
		cfg.Scheduler.RetryBackoffSeconds = 300
	}
}
