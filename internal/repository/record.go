package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
)

// Record is one stored entity: its JSON body keyed by collection and id.
type Record struct {
	Collection model.Collection
	ID         string
	Body       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordRepository stores records of every collection. List returns records
// in creation order. Get, Update and Delete fail with apperr.RecordNotFoundErr
// when the id is unknown.
type RecordRepository interface {
	List(ctx context.Context, collection model.Collection) ([]Record, error)
	Get(ctx context.Context, collection model.Collection, id string) (Record, error)
	Count(ctx context.Context, collection model.Collection) (int, error)
	Create(ctx context.Context, record Record) error
	// CreateMany inserts every record or none of them.
	CreateMany(ctx context.Context, records []Record) error
	// Update replaces the body and returns the stored record.
	Update(ctx context.Context, record Record) (Record, error)
	Delete(ctx context.Context, collection model.Collection, id string) error
}
