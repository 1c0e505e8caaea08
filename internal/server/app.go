// Package server assembles the tokenkeeper server: configuration, the
// database pool, repositories, services and the HTTP and gRPC endpoints, and
// runs them until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tokenkeeper/internal/dbx"
	"github.com/dmitrijs2005/tokenkeeper/internal/logging"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/auth"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/config"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/rest"
	"github.com/dmitrijs2005/tokenkeeper/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/tokenkeeper/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	pool   *dbx.Pool
	ledger *services.RevocationLedger
	http   *rest.HTTPServer
	health *gs.HealthServer
}

// NewApp opens the pool, applies migrations and builds every component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	pool, err := dbx.OpenPostgres(ctx, c.DatabaseDSN, dbx.PoolConfig{
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, pool.DB); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	app, err := newApp(c, logger, pool.DB, rm, pool)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	app.pool = pool
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager, pinger gs.Pinger) (*App, error) {
	tokens, err := auth.NewTokenService([]byte(c.SecretKey), auth.WithTTL(c.AccessTokenValidityDuration))
	if err != nil {
		return nil, fmt.Errorf("token service: %w", err)
	}

	creds := services.NewCredentialStore(db, rm, auth.BcryptHasher{}, c.StoreTimeout)
	ledger := services.NewRevocationLedger(db, rm, c.StoreTimeout)
	verifier := auth.NewTOTPVerifier(auth.WithQRSize(c.MFAQRSize))

	authSvc := services.NewAuthService(creds, tokens, ledger)
	mfaSvc := services.NewMFAService(db, rm, creds, verifier, tokens, c.StoreTimeout)

	gin.SetMode(c.GinMode)
	handler := rest.NewHandler(authSvc, mfaSvc, logger)
	router := rest.NewRouter(handler, tokens, creds, ledger, logger)

	app := &App{
		config: c,
		logger: logger,
		ledger: ledger,
		http:   rest.NewHTTPServer(c.EndpointAddrHTTP, router, logger),
	}
	if c.EndpointAddrGRPC != "" {
		app.health = gs.NewHealthServer(c.EndpointAddrGRPC, pinger, logger)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or an
// endpoint fails, then waits for every component to stop.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.RevocationPurgeInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.ledger.RunJanitor(ctx, app.config.RevocationPurgeInterval, app.logger.With("module", "revocation_janitor"))
		}()
	}

	wg.Wait()

	if app.pool != nil {
		if err := app.pool.Close(); err != nil {
			app.logger.Error(ctx, "closing pool", "error", err)
		}
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
}
