// Package config loads and validates application configuration from
// environment variables and an optional config file.
package config

// Config holds all application configuration, organized into logical groups.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Study    StudyConfig    `mapstructure:"study"    validate:"required"`
}

// ServerConfig contains the HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains authentication settings for the HTTP shell.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=0,lte=31"`
}

// StudyConfig contains the tunables of the study core.
type StudyConfig struct {
	// NewCardFallback caps how many never-studied cards pad out a REVIEW
	// session when nothing is due and no target was given.
	NewCardFallback int `mapstructure:"new_card_fallback" validate:"gte=0"`

	// DefaultBreakIntervalMinutes is used for break reminders when a session
	// does not specify its own interval.
	DefaultBreakIntervalMinutes int `mapstructure:"default_break_interval_minutes" validate:"gt=0"`

	// AnalyticsWindowDays is the default look-back window for historical
	// analytics queries.
	AnalyticsWindowDays int `mapstructure:"analytics_window_days" validate:"gt=0"`
}
