package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port string `envconfig:"PORT" default:"3000"`
	Env  string `envconfig:"ENV" default:"development"`

	// DB. An empty DATABASE_URL runs on the in-memory store.
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	MemoryRooms int    `envconfig:"MEMORY_ROOMS" default:"10"`
	SeedRooms   int    `envconfig:"SEED_ROOMS" default:"0"`

	// Booking rules
	Timezone              string        `envconfig:"TIMEZONE" default:"Local"`
	GraceWindow           time.Duration `envconfig:"GRACE_WINDOW" default:"15m"`
	AvailabilityLoopLimit int           `envconfig:"AVAILABILITY_LOOP_LIMIT" default:"10000"`

	// Sweep
	SweepSchedule string `envconfig:"SWEEP_SCHEDULE" default:"@every 10m"`
	SweepCron     string `envconfig:"SWEEP_CRON"`
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	SweepGateKey  string `envconfig:"SWEEP_GATE_KEY" default:"roombooking:sweep"`

	// Rate limiting, off when RPS is 0
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
	// Key clients by the first X-Forwarded-For address; only behind a proxy.
	RateLimitTrustXFF bool `envconfig:"RATE_LIMIT_TRUST_XFF" default:"false"`
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	return c, c.validate()
}

func (c Config) validate() error {
	if c.GraceWindow <= 0 {
		return fmt.Errorf("config: GRACE_WINDOW must be positive, got %s", c.GraceWindow)
	}
	if c.MemoryRooms < 0 || c.SeedRooms < 0 {
		return fmt.Errorf("config: room counts must not be negative")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("config: RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	return nil
}

// Location resolves TIMEZONE; "Local" and "" mean the host zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Addr() string { return ":" + c.Port }
