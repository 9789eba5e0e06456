package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. SCRY_SERVER_PORT.
const EnvPrefix = "SCRY"

// setDefaults registers a default for every key. Viper only resolves
// environment variables for keys it knows about, so every field needs one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)

	v.SetDefault("scheduler.day_start_hour", 4)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.random_seed", 0)
	v.SetDefault("scheduler.random_candidate_limit", 500)
	v.SetDefault("scheduler.default_request_retention", 0.9)
	v.SetDefault("scheduler.default_profile", "standard")

	v.SetDefault("forecast.default_days", 30)
	v.SetDefault("forecast.max_days", 365)
	v.SetDefault("forecast.rating_weights.again", 0.10)
	v.SetDefault("forecast.rating_weights.hard", 0.15)
	v.SetDefault("forecast.rating_weights.good", 0.65)
	v.SetDefault("forecast.rating_weights.easy", 0.10)
}

// Load configuration from environment variables and an optional config.yaml in
// the working directory. Environment variables take precedence over values from
// config files. Returns a populated Config struct or an error if loading or
// validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path searches the
// working directory for config.yaml, and a missing file there is not an error.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the struct tags of a loaded configuration and the settings
// that cannot be expressed as tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	w := cfg.Forecast.RatingWeights
	if w.Again+w.Hard+w.Good+w.Easy <= 0 {
		return errors.New("config validation failed: forecast rating weights must not all be zero")
	}

	return nil
}
