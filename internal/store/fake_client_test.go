package store_test

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/resource"
)

var _ resource.Client[model.Category] = (*fakeClient)(nil)

// fakeClient is an in-memory categories endpoint whose failures and timing
// are driven by the test.
type fakeClient struct {
	mu        sync.Mutex
	items     []model.Category
	nextID    int
	listCalls int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// listGate, when set, holds List after it has read the items until closed.
	listGate    chan struct{}
	listStarted chan struct{}
}

func newFakeClient(items ...model.Category) *fakeClient {
	return &fakeClient{items: items, nextID: len(items) + 1}
}

func (f *fakeClient) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeClient) List(ctx context.Context) ([]model.Category, error) {
	f.mu.Lock()
	f.listCalls++
	err := f.listErr
	items := slices.Clone(f.items)
	gate, started := f.listGate, f.listStarted
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeClient) Get(_ context.Context, id string) (model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i := f.index(id); i >= 0 {
		return f.items[i], nil
	}
	return model.Category{}, notFound(id)
}

func (f *fakeClient) Create(_ context.Context, draft model.Category) (model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return model.Category{}, f.createErr
	}

	created := draft.WithID(fmt.Sprintf("c%d", f.nextID))
	f.nextID++
	f.items = append(f.items, created)
	return created, nil
}

func (f *fakeClient) Update(_ context.Context, id string, entity model.Category) (model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return model.Category{}, f.updateErr
	}

	i := f.index(id)
	if i < 0 {
		return model.Category{}, notFound(id)
	}
	f.items[i] = entity.WithID(id)
	return f.items[i], nil
}

func (f *fakeClient) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}

	i := f.index(id)
	if i < 0 {
		return notFound(id)
	}
	f.items = slices.Delete(f.items, i, i+1)
	return nil
}

func (f *fakeClient) index(id string) int {
	return slices.IndexFunc(f.items, func(c model.Category) bool { return c.ID == id })
}

func notFound(id string) error {
	return apperr.TransportErr.WrapParent(&resource.TransportError{
		Method:     http.MethodDelete,
		URL:        "/categories/" + id,
		StatusCode: http.StatusNotFound,
	})
}
