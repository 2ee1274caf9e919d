package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/storage/db"
)

const uniqueViolationCode = "23505"

var _ RecordRepository = (*postgresRecordRepository)(nil)

type postgresRecordRepository struct {
	db db.DB
}

func NewPostgresRecordRepository(db db.DB) RecordRepository {
	return &postgresRecordRepository{db: db}
}

func (r postgresRecordRepository) withDB(db db.DB) *postgresRecordRepository {
	return &postgresRecordRepository{db: db}
}

func (r postgresRecordRepository) List(ctx context.Context, collection model.Collection) ([]Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT collection, id, body, created_at, updated_at
		FROM records
		WHERE collection = @collection
		ORDER BY created_at, id;
	`, pgx.NamedArgs{"collection": collection.String()})
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		return scanRecord(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect records: %w", err)
	}

	return records, nil
}

func (r postgresRecordRepository) Get(ctx context.Context, collection model.Collection, id string) (Record, error) {
	row := r.db.QueryRow(ctx, `
		SELECT collection, id, body, created_at, updated_at
		FROM records
		WHERE collection = @collection AND id = @id;
	`, pgx.NamedArgs{"collection": collection.String(), "id": id})

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, apperr.RecordNotFoundErr.WrapParent(err)
		}
		return Record{}, fmt.Errorf("scan record: %w", err)
	}

	return record, nil
}

func (r postgresRecordRepository) Count(ctx context.Context, collection model.Collection) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = @collection;`,
		pgx.NamedArgs{"collection": collection.String()},
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}

	return count, nil
}

func (r postgresRecordRepository) Create(ctx context.Context, record Record) error {
	if _, err := r.db.Exec(ctx, `
		INSERT INTO records (collection, id, body, created_at, updated_at)
		VALUES (@collection, @id, @body, @created_at, @updated_at);
	`, recordArgs(record)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return apperr.RecordConflictErr.WrapParent(err)
		}
		return fmt.Errorf("insert record: %w", err)
	}

	return nil
}

func (r postgresRecordRepository) CreateMany(ctx context.Context, records []Record) error {
	if err := r.db.WithTx(ctx, func(tx db.DB) error {
		repo := r.withDB(tx)
		for _, record := range records {
			if err := repo.Create(ctx, record); err != nil {
				return fmt.Errorf("create %s %s: %w", record.Collection, record.ID, err)
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("db with tx: %w", err)
	}

	return nil
}

func (r postgresRecordRepository) Update(ctx context.Context, record Record) (Record, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE records
		SET body = @body, updated_at = @updated_at
		WHERE collection = @collection AND id = @id
		RETURNING collection, id, body, created_at, updated_at;
	`, recordArgs(record))

	updated, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, apperr.RecordNotFoundErr.WrapParent(err)
		}
		return Record{}, fmt.Errorf("update record: %w", err)
	}

	return updated, nil
}

func (r postgresRecordRepository) Delete(ctx context.Context, collection model.Collection, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM records WHERE collection = @collection AND id = @id;`,
		pgx.NamedArgs{"collection": collection.String(), "id": id},
	)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.RecordNotFoundErr
	}

	return nil
}

func recordArgs(record Record) pgx.NamedArgs {
	return pgx.NamedArgs{
		"collection": record.Collection.String(),
		"id":         record.ID,
		"body":       []byte(record.Body),
		"created_at": record.CreatedAt,
		"updated_at": record.UpdatedAt,
	}
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		record     Record
		collection string
		body       []byte
	)
	if err := row.Scan(&collection, &record.ID, &body, &record.CreatedAt, &record.UpdatedAt); err != nil {
		return Record{}, err
	}

	record.Collection = model.Collection(collection)
	record.Body = body
	return record, nil
}
