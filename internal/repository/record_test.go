package repository_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/repository"
)

func TestMemoryRecordRepository(t *testing.T) {
	testRecordRepository(t, repository.NewMemoryRecordRepository())
}

// testRecordRepository runs the behaviour every RecordRepository must share.
func testRecordRepository(t *testing.T, repo repository.RecordRepository) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	newRecord := func(collection model.Collection, id, body string, offset time.Duration) repository.Record {
		return repository.Record{
			Collection: collection,
			ID:         id,
			Body:       json.RawMessage(body),
			CreatedAt:  now.Add(offset),
			UpdatedAt:  now.Add(offset),
		}
	}

	t.Run("Should list nothing for an empty collection", func(t *testing.T) {
		records, err := repo.List(ctx, model.CollectionSuppliers)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Should create and list in creation order", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newRecord(model.CollectionCategories, "c1", `{"name":"freios"}`, 0)))
		require.NoError(t, repo.Create(ctx, newRecord(model.CollectionCategories, "c2", `{"name":"motor"}`, time.Second)))
		require.NoError(t, repo.Create(ctx, newRecord(model.CollectionProducts, "p1", `{"name":"Pad Kit"}`, 0)))

		records, err := repo.List(ctx, model.CollectionCategories)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "c1", records[0].ID)
		assert.Equal(t, "c2", records[1].ID)
		assert.JSONEq(t, `{"name":"freios"}`, string(records[0].Body))

		count, err := repo.Count(ctx, model.CollectionCategories)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Should reject duplicate id in a collection", func(t *testing.T) {
		err := repo.Create(ctx, newRecord(model.CollectionCategories, "c1", `{"name":"dup"}`, 0))
		assert.ErrorIs(t, err, apperr.RecordConflictErr)
	})

	t.Run("Should get a record", func(t *testing.T) {
		record, err := repo.Get(ctx, model.CollectionProducts, "p1")
		require.NoError(t, err)
		assert.Equal(t, model.CollectionProducts, record.Collection)
		assert.JSONEq(t, `{"name":"Pad Kit"}`, string(record.Body))
	})

	t.Run("Should report not found on get", func(t *testing.T) {
		_, err := repo.Get(ctx, model.CollectionProducts, "missing")
		assert.ErrorIs(t, err, apperr.RecordNotFoundErr)
	})

	t.Run("Should update body and keep created_at", func(t *testing.T) {
		update := newRecord(model.CollectionCategories, "c1", `{"name":"freios v2"}`, time.Hour)
		updated, err := repo.Update(ctx, update)
		require.NoError(t, err)

		assert.JSONEq(t, `{"name":"freios v2"}`, string(updated.Body))
		assert.True(t, updated.CreatedAt.Equal(now), "created_at must not change")
		assert.True(t, updated.UpdatedAt.Equal(now.Add(time.Hour)))

		records, err := repo.List(ctx, model.CollectionCategories)
		require.NoError(t, err)
		assert.Equal(t, "c1", records[0].ID, "update must keep order")
	})

	t.Run("Should report not found on update", func(t *testing.T) {
		_, err := repo.Update(ctx, newRecord(model.CollectionCategories, "missing", `{}`, 0))
		assert.ErrorIs(t, err, apperr.RecordNotFoundErr)
	})

	t.Run("Should delete once", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, model.CollectionCategories, "c2"))
		assert.ErrorIs(t, repo.Delete(ctx, model.CollectionCategories, "c2"), apperr.RecordNotFoundErr)

		count, err := repo.Count(ctx, model.CollectionCategories)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Should create many atomically", func(t *testing.T) {
		err := repo.CreateMany(ctx, []repository.Record{
			newRecord(model.CollectionSuppliers, "s1", `{"name":"A"}`, 0),
			newRecord(model.CollectionSuppliers, "s1", `{"name":"B"}`, time.Second),
		})
		assert.Error(t, err)

		count, err := repo.Count(ctx, model.CollectionSuppliers)
		require.NoError(t, err)
		assert.Zero(t, count)

		require.NoError(t, repo.CreateMany(ctx, []repository.Record{
			newRecord(model.CollectionSuppliers, "s1", `{"name":"A"}`, 0),
			newRecord(model.CollectionSuppliers, "s2", `{"name":"B"}`, time.Second),
		}))

		count, err = repo.Count(ctx, model.CollectionSuppliers)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
