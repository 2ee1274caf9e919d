package db

import (
	"context"
	"fmt"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
)

// NewPgxPool creates a new pgx pool with the given configuration.
func NewPgxPool(ctx context.Context, cfg config.Postgres) (*pgxpool.Pool, error) {
	pgConf, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pgConf.MaxConns = cfg.MaxConns
	pgConf.MinConns = cfg.MinConns
	pgConf.MaxConnLifetime = cfg.MaxConnLifetime
	pgConf.MaxConnIdleTime = cfg.MaxConnIdleTime

	return newPool(ctx, pgConf)
}

// NewPgxPoolFromDSN creates a pool with pgx defaults for a connection string.
func NewPgxPoolFromDSN(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pgConf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return newPool(ctx, pgConf)
}

func newPool(ctx context.Context, pgConf *pgxpool.Config) (*pgxpool.Pool, error) {
	pgConf.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(ctx, pgConf)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := otelpgx.RecordStats(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("record database stats: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
