package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration
	MaxAttempts int

	// Tide provider settings.
	TideBaseURL    string
	TideSecretName string
	TideKeyEnvVar  string
	BundledEnvPath string

	// Chunking tunables. The per-call day cap and inter-chunk pause are
	// inferred provider limits, not contractual values.
	TideWindowDays  int
	HeightDays      int
	ChunkDays       int
	ChunkPause      time.Duration
	SecretStorePath string

	// Collaborator (weather/wave) provider settings.
	WeatherBaseURL string
	MarineBaseURL  string
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:     "production",
		LogLevel:        zerolog.InfoLevel,
		HTTPTimeout:     15 * time.Second,
		MaxAttempts:     3,
		TideBaseURL:     "https://www.worldtides.info/api/v3",
		TideSecretName:  "worldtides-api-key",
		TideKeyEnvVar:   "WORLDTIDES_API_KEY",
		BundledEnvPath:  getEnvOrDefault("SHORECAST_BUNDLED_ENV", ".env"),
		TideWindowDays:  7,
		HeightDays:      3,
		ChunkDays:       3,
		ChunkPause:      180 * time.Millisecond,
		SecretStorePath: getEnvOrDefault("SHORECAST_SECRETS_DB", "shorecast-secrets.db"),
		WeatherBaseURL:  "https://api.open-meteo.com/v1/forecast",
		MarineBaseURL:   "https://marine-api.open-meteo.com/v1/marine",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// LoadFromEnv loads configuration from environment variables. A local .env
// file, when present, is folded into the process environment first.
func LoadFromEnv() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 15*time.Second)),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
