package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Throttle     ThrottleConfig     `mapstructure:"throttle"`
	Limits       LimitsConfig       `mapstructure:"limits"`
	Dedup        DedupConfig        `mapstructure:"dedup"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	URL            string `mapstructure:"url"`
	RunMigrations  bool   `mapstructure:"run_migrations"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// ThrottleConfig controls the coarse per-IP request gate in front of the
// pipeline. Independent of the per-scope submission ceilings in Limits.
type ThrottleConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type LimitsConfig struct {
	Window    time.Duration `mapstructure:"window"`
	PerSource int           `mapstructure:"per_source"`
	PerEmail  int           `mapstructure:"per_email"`
}

// DedupConfig bounds the duplicate lookback. A zero window means any
// historical match counts as a duplicate.
type DedupConfig struct {
	Window time.Duration `mapstructure:"window"`
}

type NotificationConfig struct {
	Email EmailConfig `mapstructure:"email"`
	NATS  NATSConfig  `mapstructure:"nats"`
}

type EmailConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	URL     string        `mapstructure:"url"`
	To      string        `mapstructure:"to"`
	From    string        `mapstructure:"from"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type NATSConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8087)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("database.url", "")
	v.SetDefault("database.run_migrations", true)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("throttle.enabled", true)
	v.SetDefault("throttle.requests", 60)
	v.SetDefault("throttle.window", "1m")
	v.SetDefault("limits.window", "1h")
	v.SetDefault("limits.per_source", 10)
	v.SetDefault("limits.per_email", 5)
	v.SetDefault("dedup.window", "0s")
	v.SetDefault("notification.email.enabled", false)
	v.SetDefault("notification.email.url", "")
	v.SetDefault("notification.email.to", "")
	v.SetDefault("notification.email.from", "")
	v.SetDefault("notification.email.timeout", "10s")
	v.SetDefault("notification.nats.enabled", false)
	v.SetDefault("notification.nats.url", "nats://localhost:4222")
	v.SetDefault("notification.nats.subject", "contact.accepted")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/contact-gate")
	}

	// Environment variables override; nested keys map dots to underscores,
	// so limits.per_email becomes CONTACT_LIMITS_PER_EMAIL.
	v.SetEnvPrefix("CONTACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
