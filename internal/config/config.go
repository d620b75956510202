package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds server settings, read from the environment with an optional
// .env file for local development.
type Config struct {
	Port      string `env:"TIDYBLOOM_PORT" envDefault:"8080"`
	DBPath    string `env:"TIDYBLOOM_DB_PATH" envDefault:"tidybloom.db"`
	JWTSecret string `env:"TIDYBLOOM_JWT_SECRET,required"`
	LogLevel  string `env:"TIDYBLOOM_LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
