//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/repository"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/storage/db"
)

func TestPostgresRecordRepository(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "autoparts",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	}

	container, err := testcontainers.GenericContainer(ctx, req)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/autoparts?sslmode=disable", host, port.Port())
	pool, err := db.NewPgxPoolFromDSN(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	client := db.NewClient(pool)

	t.Run("Should report a missing schema as unhealthy", func(t *testing.T) {
		healthy, err := client.IsHealthy(ctx)
		assert.ErrorIs(t, err, db.ErrSchemaMissing)
		assert.False(t, healthy)
	})

	require.NoError(t, db.Migrate(pool))

	t.Run("Should be healthy once migrated", func(t *testing.T) {
		healthy, err := client.IsHealthy(ctx)
		require.NoError(t, err)
		assert.True(t, healthy)
	})

	t.Run("Should roll back a failed nested transaction to its savepoint", func(t *testing.T) {
		insert := func(tx db.DB, id string) error {
			_, err := tx.Exec(ctx, `
				INSERT INTO records (collection, id, body, created_at, updated_at)
				VALUES ('nested', $1, '{}', now(), now());
			`, id)
			return err
		}
		errDuplicate := errors.New("duplicate")

		err := client.WithTx(ctx, func(tx db.DB) error {
			if err := insert(tx, "kept"); err != nil {
				return err
			}
			nestedErr := tx.WithTx(ctx, func(tx db.DB) error {
				if err := insert(tx, "dropped"); err != nil {
					return err
				}
				return errDuplicate
			})
			assert.ErrorIs(t, nestedErr, errDuplicate)
			return nil
		})
		require.NoError(t, err)

		rows, err := client.Query(ctx, `SELECT id FROM records WHERE collection = 'nested' ORDER BY id;`)
		require.NoError(t, err)
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		require.NoError(t, err)
		assert.Equal(t, []string{"kept"}, ids)

		_, err = client.Exec(ctx, `DELETE FROM records WHERE collection = 'nested';`)
		require.NoError(t, err)
	})

	testRecordRepository(t, repository.NewPostgresRecordRepository(client))
}
