package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken          string `env:"DISCORD_TOKEN"`
	CommandPrefix         string `env:"COMMAND_PREFIX" envDefault:"!"`
	BotChannelName        string `env:"BOT_CHANNEL_NAME" envDefault:"bot-commands"`
	ChallengesChannelName string `env:"CHALLENGES_CHANNEL_NAME" envDefault:"challenges"`
	CategoryName          string `env:"CATEGORY_NAME" envDefault:"Games"`

	HTTPAddr       string   `env:"HTTP_ADDR" envDefault:":8080"`
	HTTPEnabled    bool     `env:"HTTP_ENABLED" envDefault:"true"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	ArchiveDriver        string `env:"ARCHIVE_DRIVER"`
	DatabaseURL          string `env:"DATABASE_URL"`
	DBMaxOpenConns       int    `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns       int    `env:"DB_MAX_IDLE_CONNS" envDefault:"25"`
	DBConnMaxLifetimeMin int    `env:"DB_CONN_MAX_LIFETIME_MINUTES" envDefault:"5"`

	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ChallengeTTL       time.Duration `env:"CHALLENGE_TTL" envDefault:"10m"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"24h"`
	CleanupInterval    time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
	ChannelDeleteDelay time.Duration `env:"CHANNEL_DELETE_DELAY" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

var ErrMissingDiscordToken = errors.New("DISCORD_TOKEN is required")

// Load reads an optional .env file and then the process environment.
func Load(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ArchiveDriver = strings.ToLower(strings.TrimSpace(cfg.ArchiveDriver))
	if cfg.ArchiveDriver == "" && cfg.DatabaseURL != "" {
		cfg.ArchiveDriver = "postgres"
	}

	return &cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.ArchiveDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported ARCHIVE_DRIVER %q", c.ArchiveDriver)
	}
	if c.ArchiveDriver != "" && c.DatabaseURL == "" {
		return fmt.Errorf("ARCHIVE_DRIVER %q needs DATABASE_URL", c.ArchiveDriver)
	}
	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if c.CleanupInterval <= 0 {
		return errors.New("CLEANUP_INTERVAL must be positive")
	}
	return nil
}

// RequireDiscord reports whether the Discord transport can start.
func (c *Config) RequireDiscord() error {
	if strings.TrimSpace(c.DiscordToken) == "" {
		return ErrMissingDiscordToken
	}
	return nil
}

// ArchiveEnabled reports whether finished games should be stored.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveDriver != ""
}
