package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row

	// WithTx executes a function in a new transaction.
	WithTx(ctx context.Context, txFunc func(DB) error) error
}

// HealthChecker reports whether a storage backend can serve requests.
type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

// ErrSchemaMissing is reported by IsHealthy while the records table has not
// been migrated yet.
var ErrSchemaMissing = errors.New("records table is missing, run ap-migrate")

var (
	_ DB            = (*Client)(nil)
	_ HealthChecker = (*Client)(nil)
)

// Client runs record queries on a pool. Nested WithTx calls made through
// the DB handed to txFunc open savepoints.
type Client struct {
	*pgxpool.Pool
}

// NewClient creates a new db client.
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool}
}

func (p *Client) WithTx(ctx context.Context, txFunc func(DB) error) (err error) {
	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			rbErr := tx.Rollback(ctx)
			if !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	return runTx(ctx, tx, txFunc)
}

// IsHealthy pings the database and checks that the records schema exists.
func (p *Client) IsHealthy(ctx context.Context) (bool, error) {
	if err := p.Ping(ctx); err != nil {
		return false, fmt.Errorf("ping database: %w", err)
	}

	var migrated bool
	if err := p.QueryRow(ctx, `SELECT to_regclass('records') IS NOT NULL;`).Scan(&migrated); err != nil {
		return false, fmt.Errorf("check records schema: %w", err)
	}
	if !migrated {
		return false, ErrSchemaMissing
	}

	return true, nil
}

type txWrapper struct {
	pgx.Tx
}

// WithTx runs txFunc inside a savepoint of the running transaction. A failing
// txFunc only undoes its own statements.
func (t *txWrapper) WithTx(ctx context.Context, txFunc func(DB) error) (err error) {
	sp, err := t.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}
	defer func() {
		if err != nil {
			rbErr := sp.Rollback(ctx)
			if !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	return runTx(ctx, sp, txFunc)
}

func runTx(ctx context.Context, tx pgx.Tx, txFunc func(DB) error) error {
	if err := txFunc(&txWrapper{Tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
