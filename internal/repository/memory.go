package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/storage/db"
)

var (
	_ RecordRepository = (*MemoryRecordRepository)(nil)
	_ db.HealthChecker = (*MemoryRecordRepository)(nil)
)

// MemoryRecordRepository keeps records in process memory, in insertion order.
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	records map[model.Collection][]Record
}

func NewMemoryRecordRepository() *MemoryRecordRepository {
	return &MemoryRecordRepository{
		records: make(map[model.Collection][]Record),
	}
}

func (r *MemoryRecordRepository) List(_ context.Context, collection model.Collection) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneRecords(r.records[collection]), nil
}

func (r *MemoryRecordRepository) Get(_ context.Context, collection model.Collection, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexLocked(collection, id)
	if i < 0 {
		return Record{}, apperr.RecordNotFoundErr
	}

	return cloneRecord(r.records[collection][i]), nil
}

func (r *MemoryRecordRepository) Count(_ context.Context, collection model.Collection) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records[collection]), nil
}

func (r *MemoryRecordRepository) Create(ctx context.Context, record Record) error {
	return r.CreateMany(ctx, []Record{record})
}

func (r *MemoryRecordRepository) CreateMany(_ context.Context, records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	type key struct {
		collection model.Collection
		id         string
	}
	seen := make(map[key]struct{}, len(records))
	for _, record := range records {
		k := key{record.Collection, record.ID}
		if _, dup := seen[k]; dup || r.indexLocked(record.Collection, record.ID) >= 0 {
			return apperr.RecordConflictErr
		}
		seen[k] = struct{}{}
	}
	for _, record := range records {
		r.records[record.Collection] = append(r.records[record.Collection], cloneRecord(record))
	}

	return nil
}

func (r *MemoryRecordRepository) Update(_ context.Context, record Record) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(record.Collection, record.ID)
	if i < 0 {
		return Record{}, apperr.RecordNotFoundErr
	}

	stored := &r.records[record.Collection][i]
	stored.Body = slices.Clone(record.Body)
	stored.UpdatedAt = record.UpdatedAt

	return cloneRecord(*stored), nil
}

func (r *MemoryRecordRepository) Delete(_ context.Context, collection model.Collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexLocked(collection, id)
	if i < 0 {
		return apperr.RecordNotFoundErr
	}

	r.records[collection] = slices.Delete(r.records[collection], i, i+1)
	return nil
}

func (r *MemoryRecordRepository) IsHealthy(context.Context) (bool, error) {
	return true, nil
}

func (r *MemoryRecordRepository) indexLocked(collection model.Collection, id string) int {
	return slices.IndexFunc(r.records[collection], func(record Record) bool {
		return record.ID == id
	})
}

func cloneRecord(record Record) Record {
	record.Body = slices.Clone(record.Body)
	return record
}

func cloneRecords(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, record := range records {
		out = append(out, cloneRecord(record))
	}
	return out
}
