package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-review/internal/domain/practice"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SCRY"

// setDefaults registers every key so environment variables can override
// keys that never appear in a config file.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.rate_limit.requests_per_second", 10)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 25)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("engine.timezone", "UTC")

	v.SetDefault("engine.srs.min_ease", 1.3)
	v.SetDefault("engine.srs.max_ease", 0)
	v.SetDefault("engine.srs.default_ease", 2.5)
	v.SetDefault("engine.srs.again_ease_delta", -0.20)
	v.SetDefault("engine.srs.hard_ease_delta", -0.15)
	v.SetDefault("engine.srs.easy_ease_delta", 0.15)
	v.SetDefault("engine.srs.hard_interval_modifier", 1.2)
	v.SetDefault("engine.srs.easy_bonus", 1.3)
	v.SetDefault("engine.srs.first_good_interval", 1)
	v.SetDefault("engine.srs.first_easy_interval", 2)
	v.SetDefault("engine.srs.max_interval_days", 365)
	v.SetDefault("engine.srs.relearn_minutes", 10)

	v.SetDefault("engine.mastery.mastered", 90)
	v.SetDefault("engine.mastery.advanced", 70)
	v.SetDefault("engine.mastery.intermediate", 50)

	v.SetDefault("engine.queue.flashcard_seconds", 30)
	v.SetDefault("engine.queue.question_seconds", 90)
	v.SetDefault("engine.queue.default_max_items", 50)

	v.SetDefault("engine.practice.passing_score", practice.DefaultPassingScore)
	v.SetDefault("engine.practice.default_curve", "intermediate")
}

// Load reads configuration from defaults, an optional YAML file and
// SCRY_-prefixed environment variables, in increasing precedence, and
// validates the result.
//
// When path is empty a file named config.yaml is looked up in the working
// directory and skipped if absent. An explicit path must exist.
func Load(path string) (*Config, error) {
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

// Validate checks struct constraints and the cross-field rules the tags
// cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.Engine.Mastery.Validate(); err != nil {
		return fmt.Errorf("config validation failed: engine.mastery: %w", err)
	}
	if _, err := practice.CurveByName(cfg.Engine.Practice.DefaultCurve); err != nil {
		return fmt.Errorf("config validation failed: engine.practice.default_curve: %w", err)
	}
	if cfg.Engine.SRS.MaxEaseFactor > 0 && cfg.Engine.SRS.MaxEaseFactor < cfg.Engine.SRS.MinEaseFactor {
		return fmt.Errorf("config validation failed: engine.srs.max_ease below min_ease")
	}

	// Zero ease settings keep their defaults, so compare what the scheduler
	// will actually use.
	params := srs.NewParams(cfg.Engine.SRS)
	if params.DefaultEaseFactor < params.MinEaseFactor {
		return fmt.Errorf("config validation failed: engine.srs.default_ease %.2f below min_ease %.2f",
			params.DefaultEaseFactor, params.MinEaseFactor)
	}
	if r := cfg.Engine.SRS.RelearnMinutes; r != nil && *r < 0 {
		return fmt.Errorf("config validation failed: engine.srs.relearn_minutes must not be negative")
	}
	return nil
}
