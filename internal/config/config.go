// Package config loads the storefront configuration from an optional .env file,
// an optional config file and the process environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration of the storefront API.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Paddle   PaddleConfig   `mapstructure:"paddle"`
	Log      LogConfig      `mapstructure:"log"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsProduction reports whether the service runs against live billing.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the client IP is always the peer address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
	LoginRate  float64       `mapstructure:"login_rate"`
	LoginBurst int           `mapstructure:"login_burst"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
}

type PaddleConfig struct {
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	Environment   string `mapstructure:"environment"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type SeedConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

const (
	devJWTSecret     = "dev-only-secret-change-me"
	devAdminPassword = "admin123"
)

var supportedDrivers = map[string]bool{"mysql": true, "postgres": true, "sqlite": true}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("http.trusted_proxies", []string{})

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 72*time.Hour)
	v.SetDefault("auth.login_rate", 5.0)
	v.SetDefault("auth.login_burst", 10)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "storefront")

	v.SetDefault("paddle.api_key", "")
	v.SetDefault("paddle.webhook_secret", "")
	v.SetDefault("paddle.environment", "sandbox")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	v.SetDefault("seed.admin_email", "admin@vividenstudio.com")
	v.SetDefault("seed.admin_password", devAdminPassword)
}

// Load reads the configuration. path may be empty, in which case only the
// environment (and .env) is consulted.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The first API release read its DSN from DB_DSN_PRIMARY.
	if err := v.BindEnv("database.dsn", "DATABASE_DSN", "DB_DSN_PRIMARY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(c.Database.Driver)
	if !supportedDrivers[c.Database.Driver] {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn (DATABASE_DSN) is required")
	}

	if c.Auth.JWTSecret == "" {
		if c.App.IsProduction() {
			return errors.New("auth.jwt_secret (AUTH_JWT_SECRET) is required in production")
		}
		c.Auth.JWTSecret = devJWTSecret
	}

	if c.App.IsProduction() {
		if pw := c.Seed.AdminPassword; len(pw) < 8 || pw == devAdminPassword {
			return errors.New("seed.admin_password (SEED_ADMIN_PASSWORD) must be set to a non-default value of at least 8 characters in production")
		}
	}
	return nil
}
