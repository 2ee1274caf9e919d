package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/resource"
)

// ErrClosed is returned by operations started after Close.
var ErrClosed = errors.New("store is closed")

// Store owns the in-memory list of one entity kind together with its
// loading flag and last error. The list only changes through Store methods.
//
// The mutex is never held across a network call, so two operations on the
// same store interleave: a Refresh that resolves after a Remove overwrites
// the removal and vice versa. The last operation to resolve wins.
type Store[T model.Entity[T]] struct {
	cfg        config.Store
	logger     *slog.Logger
	client     resource.Client[T]
	collection model.Collection

	mu        sync.RWMutex
	items     []T
	loading   bool
	err       error
	state     State
	closed    bool
	listeners map[uint64]Listener[T]
	nextSubID uint64
}

// New creates an idle store. Nothing is fetched until EnsureLoaded or Refresh.
func New[T model.Entity[T]](
	cfg config.Store,
	logger *slog.Logger,
	collection model.Collection,
	client resource.Client[T],
) *Store[T] {
	return &Store[T]{
		cfg: cfg,
		logger: logger.With(
			slog.String("service", "store"),
			slog.String("collection", collection.String()),
		),
		client:     client,
		collection: collection,
		items:      []T{},
		state:      StateIdle,
		listeners:  make(map[uint64]Listener[T]),
	}
}

// Collection returns the collection this store mirrors.
func (s *Store[T]) Collection() model.Collection {
	return s.collection
}

// Reconcile returns the strategy applied after every successful mutation.
func (s *Store[T]) Reconcile() config.Reconcile {
	return s.cfg.Reconcile
}

// EnsureLoaded performs the initial fetch the first time it is called on an
// idle store. Later calls return immediately.
func (s *Store[T]) EnsureLoaded(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.state != StateIdle {
		s.mu.Unlock()
		return nil
	}
	s.enterLoadingLocked()
	s.mu.Unlock()
	s.notify()

	return s.refresh(ctx, time.Now())
}

// Refresh replaces the list with the collection's current contents.
// On failure the previous list is kept and the error is recorded.
func (s *Store[T]) Refresh(ctx context.Context) error {
	start := time.Now()
	if err := s.begin(); err != nil {
		return err
	}

	return s.refresh(ctx, start)
}

func (s *Store[T]) refresh(ctx context.Context, start time.Time) error {
	items, err := s.client.List(ctx)
	if err != nil {
		err = fmt.Errorf("failed to load %s: %w", s.collection, err)
		s.fail(ctx, opRefresh, err)
		s.observe(opRefresh, start, err)
		return err
	}

	s.succeed(func() { s.items = items })
	s.observe(opRefresh, start, nil)
	return nil
}

// Add creates draft through the API and reconciles the list.
func (s *Store[T]) Add(ctx context.Context, draft T) (T, error) {
	start := time.Now()
	if err := s.begin(); err != nil {
		var zero T
		return zero, err
	}

	created, err := s.client.Create(ctx, draft)
	if err != nil {
		err = fmt.Errorf("failed to add to %s: %w", s.collection, err)
		s.fail(ctx, opAdd, err)
		s.observe(opAdd, start, err)
		return created, err
	}

	s.reconcile(ctx, func() {
		if i := s.indexLocked(created.GetID()); i >= 0 {
			s.items[i] = created
			return
		}
		s.items = append(s.items, created)
	})
	s.observe(opAdd, start, nil)

	s.logger.InfoContext(ctx, "record added", slog.String("id", created.GetID()))
	return created, nil
}

// Update replaces the record identified by entity's id, keeping list order.
func (s *Store[T]) Update(ctx context.Context, entity T) (T, error) {
	id := entity.GetID()
	if id == "" {
		return entity, apperr.ValidationErr.WrapParent(errors.New("update requires an id"))
	}

	start := time.Now()
	if err := s.begin(); err != nil {
		return entity, err
	}

	updated, err := s.client.Update(ctx, id, entity)
	if err != nil {
		err = fmt.Errorf("failed to update %s %s: %w", s.collection, id, err)
		s.fail(ctx, opUpdate, err)
		s.observe(opUpdate, start, err)
		return updated, err
	}
	if updated.GetID() == "" {
		updated = updated.WithID(id)
	}

	s.reconcile(ctx, func() {
		if i := s.indexLocked(id); i >= 0 {
			s.items[i] = updated
		}
	})
	s.observe(opUpdate, start, nil)

	s.logger.InfoContext(ctx, "record updated", slog.String("id", id))
	return updated, nil
}

// Remove deletes the record through the API. Removing an id the API no
// longer knows fails with the API's not-found status as a transport error.
func (s *Store[T]) Remove(ctx context.Context, id string) error {
	start := time.Now()
	if err := s.begin(); err != nil {
		return err
	}

	if err := s.client.Delete(ctx, id); err != nil {
		err = fmt.Errorf("failed to remove %s %s: %w", s.collection, id, err)
		s.fail(ctx, opRemove, err)
		s.observe(opRemove, start, err)
		return err
	}

	s.reconcile(ctx, func() {
		s.items = slices.DeleteFunc(s.items, func(item T) bool {
			return item.GetID() == id
		})
	})
	s.observe(opRemove, start, nil)

	s.logger.InfoContext(ctx, "record removed", slog.String("id", id))
	return nil
}

// Items returns a copy of the current list in fetch order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.items)
}

// Len returns the number of loaded records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.items)
}

func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading
}

// Err returns the error recorded by the last failed operation, or nil.
func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

// ErrMessage returns the recorded error as a human readable message.
func (s *Store[T]) ErrMessage() (string, bool) {
	err := s.Err()
	if err == nil {
		return "", false
	}
	return err.Error(), true
}

func (s *Store[T]) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

// Snapshot returns items, flags and state read under a single lock.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshotLocked()
}

// Find looks id up in the loaded list. It never calls the API.
func (s *Store[T]) Find(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], nil
	}

	var zero T
	return zero, apperr.NotFoundInLocalStateErr.WrapParent(
		fmt.Errorf("%s %q is not in the loaded list", s.collection, id))
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned func drops the store's reference to fn; operations that
// resolve afterwards no longer reach it.
func (s *Store[T]) Subscribe(fn Listener[T]) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// Close drops every listener and rejects new operations. Operations already
// in flight still resolve and update the store.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	clear(s.listeners)
}

func (s *Store[T]) begin() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.enterLoadingLocked()
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store[T]) enterLoadingLocked() {
	s.loading = true
	s.err = nil
	s.state = StateLoading
}

func (s *Store[T]) succeed(apply func()) {
	s.mu.Lock()
	apply()
	s.loading = false
	s.err = nil
	s.state = StateReady
	s.mu.Unlock()

	s.notify()
}

func (s *Store[T]) fail(ctx context.Context, op string, err error) {
	s.mu.Lock()
	s.loading = false
	s.err = err
	s.state = StateFailed
	s.mu.Unlock()

	s.logger.WarnContext(ctx, "store operation failed",
		slog.String("operation", op),
		slog.Any("error", err))
	s.notify()
}

// reconcile brings the list in line with a successful mutation, either by
// applying merge or by fetching the whole collection again. A failed
// re-fetch is recorded on the store; the mutation itself already succeeded.
func (s *Store[T]) reconcile(ctx context.Context, merge func()) {
	if s.cfg.Reconcile == config.ReconcileMerge {
		s.succeed(merge)
		return
	}

	items, err := s.client.List(ctx)
	if err != nil {
		s.fail(ctx, opRefresh, fmt.Errorf("failed to reload %s: %w", s.collection, err))
		return
	}
	s.succeed(func() { s.items = items })
}

func (s *Store[T]) indexLocked(id string) int {
	return slices.IndexFunc(s.items, func(item T) bool {
		return item.GetID() == id
	})
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:   slices.Clone(s.items),
		Loading: s.loading,
		Err:     s.err,
		State:   s.state,
	}
}

func (s *Store[T]) notify() {
	s.mu.RLock()
	if len(s.listeners) == 0 {
		s.mu.RUnlock()
		return
	}
	snap := s.snapshotLocked()
	listeners := make([]Listener[T], 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store[T]) observe(op string, start time.Time, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}

	operationsTotal.WithLabelValues(s.collection.String(), op, outcome).Inc()
	operationDuration.WithLabelValues(s.collection.String(), op).Observe(time.Since(start).Seconds())
}
