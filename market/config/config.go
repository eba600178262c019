// Package config holds the marketplace configuration layered on top of the
// core bot configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/surplusbot/core/config"
	coredatabase "github.com/m3rciful/surplusbot/core/database"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SessionsMemory = "memory"
	SessionsRedis  = "redis"

	defaultQueryTimeout = 5 * time.Second
)

// StorageConfig selects the repository implementation.
type StorageConfig struct {
	Driver       string        `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	QueryTimeout time.Duration `yaml:"query_timeout" envconfig:"STORAGE_QUERY_TIMEOUT"`
}

// SessionsConfig selects where conversation sessions live. TTL 0 keeps
// sessions forever.
type SessionsConfig struct {
	Backend string        `yaml:"backend" envconfig:"SESSIONS_BACKEND"`
	TTL     time.Duration `yaml:"ttl" envconfig:"SESSIONS_TTL"`
}

// RedisConfig holds the Redis connection used by the session backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" envconfig:"REDIS_DB"`
}

// BookingConfig controls expiration of unconfirmed bookings. Both the
// threshold and the sweep interval must be set explicitly.
type BookingConfig struct {
	ExpireAfterHours int           `yaml:"expire_after_hours" envconfig:"BOOKING_EXPIRE_AFTER_HOURS"`
	SweepInterval    time.Duration `yaml:"sweep_interval" envconfig:"BOOKING_SWEEP_INTERVAL"`
	// Timezone is the IANA zone sellers enter pickup times in.
	Timezone string `yaml:"timezone" envconfig:"BOOKING_TIMEZONE"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Sessions SessionsConfig      `yaml:"sessions"`
	Redis    RedisConfig         `yaml:"redis"`
	Booking  BookingConfig       `yaml:"booking"`

	location *time.Location
}

// CoreConfig exposes the embedded core configuration to the runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Location returns the zone resolved from booking.timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch driver {
	case "", StoragePostgres:
		driver = StoragePostgres
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database.host and database.name are required for storage.driver %q", StoragePostgres)
		}
		if cfg.Database.Port == "" {
			cfg.Database.Port = "5432"
		}
		if cfg.Database.SSLMode == "" {
			cfg.Database.SSLMode = "disable"
		}
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: postgres, memory", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver
	if cfg.Storage.QueryTimeout < 0 {
		return fmt.Errorf("storage.query_timeout must be >= 0")
	}
	if cfg.Storage.QueryTimeout == 0 {
		cfg.Storage.QueryTimeout = defaultQueryTimeout
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Sessions.Backend))
	switch backend {
	case "", SessionsMemory:
		backend = SessionsMemory
	case SessionsRedis:
		if strings.TrimSpace(cfg.Redis.Addr) == "" {
			return fmt.Errorf("redis.addr is required for sessions.backend %q", SessionsRedis)
		}
	default:
		return fmt.Errorf("invalid sessions.backend %q; allowed: memory, redis", cfg.Sessions.Backend)
	}
	cfg.Sessions.Backend = backend
	if cfg.Sessions.TTL < 0 {
		return fmt.Errorf("sessions.ttl must be >= 0")
	}

	if cfg.Booking.ExpireAfterHours <= 0 {
		return fmt.Errorf("booking.expire_after_hours is required and must be > 0")
	}
	if cfg.Booking.SweepInterval <= 0 {
		return fmt.Errorf("booking.sweep_interval is required and must be > 0")
	}
	tz := strings.TrimSpace(cfg.Booking.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid booking.timezone %q: %w", cfg.Booking.Timezone, err)
	}
	cfg.Booking.Timezone = tz
	cfg.location = loc
	return nil
}
