package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the auction engine
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseDSN    string `mapstructure:"DATABASE_DSN"`

	LockBackend     string        `mapstructure:"LOCK_BACKEND"`
	LockWaitTimeout time.Duration `mapstructure:"LOCK_WAIT_TIMEOUT"`
	LockTTL         time.Duration `mapstructure:"LOCK_TTL"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`

	Transport    string   `mapstructure:"TRANSPORT"`
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`

	SweepInterval    time.Duration `mapstructure:"SWEEP_INTERVAL"`
	EndingSoonWindow time.Duration `mapstructure:"ENDING_SOON_WINDOW"`

	NotifyWorkers     int           `mapstructure:"NOTIFY_WORKERS"`
	NotifyMaxAttempts int           `mapstructure:"NOTIFY_MAX_ATTEMPTS"`
	NotifyRetryDelay  time.Duration `mapstructure:"NOTIFY_RETRY_DELAY"`

	FirstBidStrict     bool          `mapstructure:"FIRST_BID_STRICT"`
	EnforceCeiling     bool          `mapstructure:"ENFORCE_CEILING"`
	MinAuctionDuration time.Duration `mapstructure:"MIN_AUCTION_DURATION"`
	StartGracePeriod   time.Duration `mapstructure:"START_GRACE_PERIOD"`
	DefaultRunTime     time.Duration `mapstructure:"DEFAULT_RUN_TIME"`

	AdminIDs []string `mapstructure:"ADMIN_IDS"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":       ":8080",
	"LOG_LEVEL":            "info",
	"DATABASE_DRIVER":      "memory",
	"DATABASE_DSN":         "auctions.db",
	"LOCK_BACKEND":         "memory",
	"LOCK_WAIT_TIMEOUT":    "2s",
	"LOCK_TTL":             "10s",
	"REDIS_ADDR":           "localhost:6379",
	"TRANSPORT":            "log",
	"KAFKA_BROKERS":        "localhost:9092",
	"KAFKA_TOPIC":          "auction-notifications",
	"SWEEP_INTERVAL":       "30s",
	"ENDING_SOON_WINDOW":   "5m",
	"NOTIFY_WORKERS":       4,
	"NOTIFY_MAX_ATTEMPTS":  3,
	"NOTIFY_RETRY_DELAY":   "200ms",
	"FIRST_BID_STRICT":     false,
	"ENFORCE_CEILING":      true,
	"MIN_AUCTION_DURATION": "10m",
	"START_GRACE_PERIOD":   "5m",
	"DEFAULT_RUN_TIME":     "1h",
	"ADMIN_IDS":            "admin",
}

// LoadConfig reads app.env from path when present, then lets environment
// variables override it. Every key has a default.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read %s/app.env: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unknown backends and non-positive timings
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.LockBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown LOCK_BACKEND %q", c.LockBackend)
	}
	switch c.Transport {
	case "log", "redis", "kafka":
	default:
		return fmt.Errorf("config: unknown TRANSPORT %q", c.Transport)
	}
	if c.Transport == "kafka" && (len(c.KafkaBrokers) == 0 || c.KafkaTopic == "") {
		return fmt.Errorf("config: kafka transport needs KAFKA_BROKERS and KAFKA_TOPIC")
	}

	positive := map[string]time.Duration{
		"LOCK_WAIT_TIMEOUT":    c.LockWaitTimeout,
		"LOCK_TTL":             c.LockTTL,
		"SWEEP_INTERVAL":       c.SweepInterval,
		"ENDING_SOON_WINDOW":   c.EndingSoonWindow,
		"NOTIFY_RETRY_DELAY":   c.NotifyRetryDelay,
		"MIN_AUCTION_DURATION": c.MinAuctionDuration,
		"START_GRACE_PERIOD":   c.StartGracePeriod,
		"DEFAULT_RUN_TIME":     c.DefaultRunTime,
	}
	for key, d := range positive {
		if d <= 0 {
			return fmt.Errorf("config: %s must be positive, got %s", key, d)
		}
	}
	if c.NotifyWorkers <= 0 {
		return fmt.Errorf("config: NOTIFY_WORKERS must be positive, got %d", c.NotifyWorkers)
	}
	if c.NotifyMaxAttempts <= 0 {
		return fmt.Errorf("config: NOTIFY_MAX_ATTEMPTS must be positive, got %d", c.NotifyMaxAttempts)
	}
	return nil
}
