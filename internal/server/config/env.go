package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type portEnv struct {
	Port string `env:"PORT"`
}

// parseEnv loads envFile (".env" when empty) into the process environment
// without overriding variables that are already set, then overlays every
// variable present onto cfg. A missing dotenv file is not an error.
// PORT is honoured as a shorthand for HTTP_ADDRESS=":<PORT>".
func parseEnv(cfg *Config, envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	var p portEnv
	if err := env.Parse(&p); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if p.Port != "" {
		cfg.EndpointAddrHTTP = ":" + p.Port
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
