package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`

	// StoragePath is where the command history datastore lives.
	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	// StatusAddr is the listen address of the health/metrics server.
	// Empty disables the server.
	StatusAddr string `env:"STATUS_ADDR" envDefault:":8787"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	SkipVoteWindow    time.Duration `env:"SKIP_VOTE_WINDOW" envDefault:"15s"`
	StopConfirmWindow time.Duration `env:"STOP_CONFIRM_WINDOW" envDefault:"30s"`

	InitSlashCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
}

func New() (*Config, error) {
	// Missing .env is fine, system environment still applies.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
