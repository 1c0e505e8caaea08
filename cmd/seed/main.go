// Command seed applies the schema migrations and creates or resets a user.
//
//	seed -d postgres://... -u alice
//
// The password is read from the terminal without echo.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/tokenkeeper/internal/common"
	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/seed"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
)

func main() {
	cfg, err := seed.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error(context.Background(), "seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *seed.Config, logger logging.Logger) error {
	var err error
	if cfg.Username == "" {
		cfg.Username, err = seed.GetSimpleText(bufio.NewReader(os.Stdin), "Username", os.Stdout)
		if err != nil {
			return fmt.Errorf("read username: %w", err)
		}
	}

	password, err := seed.GetPassword(os.Stdout, "Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer common.WipeByteArray(password)

	pool, err := dbx.OpenPostgres(ctx, cfg.DatabaseDSN, dbx.PoolConfig{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer pool.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, pool.DB); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	created, err := seed.NewSeeder(pool.DB, rm, auth.BcryptHasher{}).Upsert(ctx, cfg.Username, password)
	if err != nil {
		return err
	}

	if created {
		logger.Info(ctx, "user created", "username", cfg.Username)
	} else {
		logger.Info(ctx, "password reset", "username", cfg.Username)
	}
	return nil
}
