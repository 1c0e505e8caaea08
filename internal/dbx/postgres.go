package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PoolConfig bounds the shared connection pool.
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Pool is the process-wide connection pool. It is constructed once at startup
// and handed to every component that needs storage.
type Pool struct {
	DB  *sql.DB
	pgx *pgxpool.Pool
}

// OpenPostgres creates a fixed-size pgxpool for dsn and exposes it as a
// *sql.DB. Checkouts beyond MaxConns wait until a connection is released or
// the caller's context expires.
func OpenPostgres(ctx context.Context, dsn string, pc PoolConfig) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		cfg.MinConns = pc.MinConns
	}
	if pc.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pc.MaxConnLifetime
	}
	if pc.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = pc.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pool init: %w", err)
	}

	return &Pool{DB: stdlib.OpenDBFromPool(pool), pgx: pool}, nil
}

// Ping checks that a connection can be acquired and used.
func (p *Pool) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Stats reports acquired/idle/total connections for logging.
func (p *Pool) Stats() (acquired, idle, total int32) {
	s := p.pgx.Stat()
	return s.AcquiredConns(), s.IdleConns(), s.TotalConns()
}

func (p *Pool) Close() error {
	err := p.DB.Close()
	p.pgx.Close()
	return err
}

const uniqueViolation = "23505"

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
