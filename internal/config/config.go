package config

import (
	"time"

	"github.com/phrazzld/scry-review/internal/domain/analytics"
	"github.com/phrazzld/scry-review/internal/domain/srs"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int             `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string          `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat       string          `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" validate:"gt=0"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds API requests per authenticated user. A zero rate
// disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL             string        `mapstructure:"url" validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// EngineConfig tunes the review engine.
type EngineConfig struct {
	// Timezone is the IANA location used for every calendar-day computation.
	Timezone string               `mapstructure:"timezone" validate:"required,timezone"`
	SRS      srs.ParamsConfig     `mapstructure:"srs"`
	Mastery  analytics.Thresholds `mapstructure:"mastery"`
	Queue    QueueConfig          `mapstructure:"queue"`
	Practice PracticeConfig       `mapstructure:"practice"`
}

// QueueConfig holds session-building defaults.
type QueueConfig struct {
	FlashcardSeconds int `mapstructure:"flashcard_seconds" validate:"gt=0"`
	QuestionSeconds  int `mapstructure:"question_seconds" validate:"gt=0"`
	DefaultMaxItems  int `mapstructure:"default_max_items" validate:"gte=0"`
}

// PracticeConfig holds practice-set defaults.
type PracticeConfig struct {
	PassingScore float64 `mapstructure:"passing_score" validate:"gt=0,lte=100"`
	DefaultCurve string  `mapstructure:"default_curve" validate:"required"`
}

// Location resolves the configured timezone.
func (e EngineConfig) Location() (*time.Location, error) {
	return time.LoadLocation(e.Timezone)
}
