package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/repository"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

// CollectionService serves CRUD for one collection of the development API.
type CollectionService[T model.Entity[T]] interface {
	Collection() model.Collection
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	// Create validates the draft and stores it under a new id.
	Create(ctx context.Context, draft T) (T, error)
	// Update fully replaces the entity stored under id.
	Update(ctx context.Context, id string, entity T) (T, error)
	Delete(ctx context.Context, id string) error
	// Seed creates items only when the collection is empty and reports how many were created.
	Seed(ctx context.Context, items []T) (int, error)
}

type collectionService[T model.Entity[T]] struct {
	collection model.Collection
	recordRepo repository.RecordRepository
	validator  validator.Validator
}

func NewCollectionService[T model.Entity[T]](
	collection model.Collection,
	recordRepo repository.RecordRepository,
	validator validator.Validator,
) CollectionService[T] {
	return &collectionService[T]{
		collection: collection,
		recordRepo: recordRepo,
		validator:  validator,
	}
}

func (s *collectionService[T]) Collection() model.Collection {
	return s.collection
}

func (s *collectionService[T]) List(ctx context.Context) ([]T, error) {
	records, err := s.recordRepo.List(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("record repository list: %w", err)
	}

	items := make([]T, 0, len(records))
	for _, record := range records {
		item, err := decodeRecord[T](record)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

func (s *collectionService[T]) Get(ctx context.Context, id string) (T, error) {
	record, err := s.recordRepo.Get(ctx, s.collection, id)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("record repository get: %w", err)
	}

	return decodeRecord[T](record)
}

func (s *collectionService[T]) Create(ctx context.Context, draft T) (T, error) {
	entity, record, err := s.newRecord(draft)
	if err != nil {
		return entity, err
	}

	if err := s.recordRepo.Create(ctx, record); err != nil {
		return entity, fmt.Errorf("record repository create: %w", err)
	}

	return entity, nil
}

func (s *collectionService[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	if bodyID := entity.GetID(); bodyID != "" && bodyID != id {
		return entity, apperr.IDMismatchErr.WrapParent(fmt.Errorf("path id %q, body id %q", id, bodyID))
	}

	entity = entity.WithID(id)
	if err := s.validator.Validate(entity); err != nil {
		return entity, fmt.Errorf("validate %s: %w", s.collection, err)
	}

	body, err := json.Marshal(entity)
	if err != nil {
		return entity, fmt.Errorf("marshal %s: %w", s.collection, err)
	}

	record, err := s.recordRepo.Update(ctx, repository.Record{
		Collection: s.collection,
		ID:         id,
		Body:       body,
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		return entity, fmt.Errorf("record repository update: %w", err)
	}

	return decodeRecord[T](record)
}

func (s *collectionService[T]) Delete(ctx context.Context, id string) error {
	if err := s.recordRepo.Delete(ctx, s.collection, id); err != nil {
		return fmt.Errorf("record repository delete: %w", err)
	}

	return nil
}

func (s *collectionService[T]) Seed(ctx context.Context, items []T) (int, error) {
	count, err := s.recordRepo.Count(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("record repository count: %w", err)
	}
	if count > 0 || len(items) == 0 {
		return 0, nil
	}

	records := make([]repository.Record, 0, len(items))
	for _, item := range items {
		_, record, err := s.newRecord(item)
		if err != nil {
			return 0, err
		}
		records = append(records, record)
	}

	if err := s.recordRepo.CreateMany(ctx, records); err != nil {
		return 0, fmt.Errorf("record repository create many: %w", err)
	}

	return len(records), nil
}

// newRecord assigns a fresh id to draft and validates it.
func (s *collectionService[T]) newRecord(draft T) (T, repository.Record, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return draft, repository.Record{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	entity := draft.WithID(id.String())
	if err := s.validator.Validate(entity); err != nil {
		return entity, repository.Record{}, fmt.Errorf("validate %s: %w", s.collection, err)
	}

	body, err := json.Marshal(entity)
	if err != nil {
		return entity, repository.Record{}, fmt.Errorf("marshal %s: %w", s.collection, err)
	}

	now := time.Now()
	return entity, repository.Record{
		Collection: s.collection,
		ID:         entity.GetID(),
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func decodeRecord[T model.Entity[T]](record repository.Record) (T, error) {
	var entity T
	if err := json.Unmarshal(record.Body, &entity); err != nil {
		return entity, fmt.Errorf("unmarshal %s %s: %w", record.Collection, record.ID, err)
	}

	// The stored key is authoritative over whatever id the body holds.
	return entity.WithID(record.ID), nil
}
