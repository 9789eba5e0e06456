package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Forecast  ForecastConfig  `mapstructure:"forecast"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
// The URL is optional at load time because offline commands never connect;
// the serve and migrate commands require it.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"omitempty,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
}

// SchedulerConfig controls study-day boundaries and review selection.
type SchedulerConfig struct {
	// DayStartHour is the local hour at which a new study day begins. Daily
	// quotas are counted from this boundary.
	DayStartHour int    `mapstructure:"day_start_hour" validate:"gte=0,lte=23"`
	Timezone     string `mapstructure:"timezone"       validate:"required,timezone"`
	// RandomSeed seeds the review-order shuffler. Zero means a time-based seed.
	RandomSeed              uint64  `mapstructure:"random_seed"`
	RandomCandidateLimit    int     `mapstructure:"random_candidate_limit"    validate:"gt=0,lte=10000"`
	DefaultRequestRetention float64 `mapstructure:"default_request_retention" validate:"gt=0.5,lt=0.995"`
	DefaultProfile          string  `mapstructure:"default_profile"           validate:"oneof=standard intensive"`
}

// Location resolves the configured time zone.
func (c SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ForecastConfig contains the workload simulator settings.
type ForecastConfig struct {
	DefaultDays   int                 `mapstructure:"default_days"   validate:"gt=0,ltefield=MaxDays"`
	MaxDays       int                 `mapstructure:"max_days"       validate:"gt=0,lte=3650"`
	RatingWeights RatingWeightsConfig `mapstructure:"rating_weights" validate:"required"`
}

// RatingWeightsConfig is the relative frequency of each simulated rating.
// The weights are normalized by the simulator and need not sum to one.
type RatingWeightsConfig struct {
	Again float64 `mapstructure:"again" validate:"gte=0"`
	Hard  float64 `mapstructure:"hard"  validate:"gte=0"`
	Good  float64 `mapstructure:"good"  validate:"gte=0"`
	Easy  float64 `mapstructure:"easy"  validate:"gte=0"`
}
