package seed

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/tokenkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN"`
	Username    string `env:"SEED_USERNAME"`
	LogLevel    string `env:"LOG_LEVEL"`
}

// LoadConfig reads the dotenv file and environment, then -d, -u and -l
// flags from args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{LogLevel: "info"}

	envFile := flagx.EnvFile(args)
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.Username, "u", cfg.Username, "username to create or reset")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-d", "--d", "-u", "--u", "-l", "--l"})); err != nil {
		return nil, err
	}

	if cfg.DatabaseDSN == "" {
		return nil, errors.New("DATABASE_DSN is required")
	}
	return cfg, nil
}
