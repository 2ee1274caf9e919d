package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/export"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/admin"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/api"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/registry"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/repository"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/service"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/store"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type harness struct {
	handler  http.Handler
	registry *registry.Registry
	backend  *httptest.Server
	// down makes the backend answer 503 to every request while set.
	down *atomic.Bool
}

// newHarness wires the admin screens to a development API served from
// memory. With seed set, the default categories and suppliers are created.
func newHarness(t *testing.T, seed bool) *harness {
	t.Helper()
	ctx := context.Background()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	repo := repository.NewMemoryRecordRepository()
	services := api.Services{
		Products:   service.NewCollectionService[model.Product](model.CollectionProducts, repo, v),
		Categories: service.NewCollectionService[model.Category](model.CollectionCategories, repo, v),
		Suppliers:  service.NewCollectionService[model.Supplier](model.CollectionSuppliers, repo, v),
		Clients:    service.NewCollectionService[model.Client](model.CollectionClients, repo, v),
	}
	if seed {
		_, err := services.Categories.Seed(ctx, service.SeedCategories)
		require.NoError(t, err)
		_, err = services.Suppliers.Seed(ctx, service.SeedSuppliers)
		require.NoError(t, err)
	}

	apiHandler, err := api.New(config.HTTP{ValidateRequests: true}, discard, services, repo).Handler()
	require.NoError(t, err)
	down := &atomic.Bool{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		apiHandler.ServeHTTP(w, r)
	}))
	t.Cleanup(backend.Close)

	reg, err := registry.New(config.API{BaseURL: backend.URL}, discard, registry.WithHTTPClient(backend.Client()))
	require.NoError(t, err)
	t.Cleanup(reg.Close)

	svc, err := admin.New(config.Admin{}, discard, reg, v)
	require.NoError(t, err)

	return &harness{handler: svc.Handler(), registry: reg, backend: backend, down: down}
}

func (h *harness) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (h *harness) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, path, level string) url.Values {
	t.Helper()

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, path, loc.Path)
	assert.Equal(t, level, loc.Query().Get("level"))

	return loc.Query()
}

func padKitForm() url.Values {
	return url.Values{
		"name":        {"Pad Kit"},
		"description": {"brake pads"},
		"price":       {"49.90"},
		"quantity":    {"10"},
		"color":       {"black"},
		"category":    {"freios"},
		"supplier":    {"fornecedorA"},
	}
}

func TestHome(t *testing.T) {
	h := newHarness(t, true)

	rec := h.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Categories")
	assert.Equal(t, 5, h.registry.Categories.Len())
	assert.Equal(t, 3, h.registry.Suppliers.Len())
}

func TestProductScreens(t *testing.T) {
	h := newHarness(t, true)

	t.Run("Should show an empty list", func(t *testing.T) {
		rec := h.get(t, "/products")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No product registered yet")
	})

	t.Run("Should offer loaded categories in the form", func(t *testing.T) {
		rec := h.get(t, "/products/new")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="suspensao"`)
		assert.Contains(t, rec.Body.String(), "Suspensão")
		assert.Contains(t, rec.Body.String(), "Fornecedor B (Motor)")
	})

	t.Run("Should create the Pad Kit", func(t *testing.T) {
		rec := h.post(t, "/products/new", padKitForm())
		q := assertRedirect(t, rec, "/products", "success")
		assert.Equal(t, "Product saved", q.Get("notice"))

		items := h.registry.Products.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "Pad Kit", items[0].Name)
		assert.InDelta(t, 49.9, items[0].Price, 0.0001)

		rec = h.get(t, "/products?"+q.Encode())
		assert.Contains(t, rec.Body.String(), "Pad Kit")
		assert.Contains(t, rec.Body.String(), "Product saved")
	})

	t.Run("Should re-render the form on invalid input", func(t *testing.T) {
		form := padKitForm()
		form.Set("price", "cheap")
		form.Set("quantity", "-2")

		rec := h.post(t, "/products/new", form)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "must be a number")
		assert.Contains(t, body, "must be greater than or equal to 0")
		assert.Contains(t, body, `value="cheap"`)
		assert.Equal(t, 1, h.registry.Products.Len())
	})

	t.Run("Should reject an unknown category", func(t *testing.T) {
		form := padKitForm()
		form.Set("category", "aerofolio")

		rec := h.post(t, "/products/new", form)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown category")
	})

	t.Run("Should edit an existing product", func(t *testing.T) {
		id := h.registry.Products.Items()[0].ID

		rec := h.get(t, "/products/edit/"+id)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="Pad Kit"`)

		form := padKitForm()
		form.Set("quantity", "7")
		rec = h.post(t, "/products/edit/"+id, form)
		assertRedirect(t, rec, "/products", "success")

		got, err := h.registry.Products.Find(id)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Quantity)
		assert.Equal(t, 1, h.registry.Products.Len())
	})

	t.Run("Should redirect when editing an id missing from the list", func(t *testing.T) {
		rec := h.get(t, "/products/edit/does-not-exist")

		q := assertRedirect(t, rec, "/products", "error")
		assert.Equal(t, "Product not found", q.Get("notice"))
	})

	t.Run("Should export the loaded list", func(t *testing.T) {
		rec := h.get(t, "/products/export.xlsx")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "products-")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows("products")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Pad Kit", rows[1][1])
	})

	t.Run("Should ask for confirmation before deleting", func(t *testing.T) {
		id := h.registry.Products.Items()[0].ID

		rec := h.get(t, "/products")
		assert.Contains(t, rec.Body.String(), `href="/products/delete/`+id+`"`)

		rec = h.get(t, "/products/delete/"+id)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "Delete this product?")
		assert.Contains(t, body, `action="/products/delete/`+id+`"`)
		assert.Contains(t, body, "Pad Kit")
		assert.Equal(t, 1, h.registry.Products.Len())
	})

	t.Run("Should not confirm the deletion of an unknown id", func(t *testing.T) {
		rec := h.get(t, "/products/delete/does-not-exist")

		q := assertRedirect(t, rec, "/products", "error")
		assert.Equal(t, "Product not found", q.Get("notice"))
	})

	t.Run("Should delete once and report the second failure", func(t *testing.T) {
		id := h.registry.Products.Items()[0].ID

		rec := h.post(t, "/products/delete/"+id, nil)
		assertRedirect(t, rec, "/products", "success")
		assert.Zero(t, h.registry.Products.Len())

		rec = h.post(t, "/products/delete/"+id, nil)
		q := assertRedirect(t, rec, "/products", "error")
		assert.Contains(t, q.Get("notice"), "404")
	})
}

func TestClientScreens(t *testing.T) {
	h := newHarness(t, false)

	t.Run("Should render pattern constraints", func(t *testing.T) {
		rec := h.get(t, "/clients/new")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `type="email"`)
		assert.Contains(t, rec.Body.String(), `pattern=`)
	})

	t.Run("Should block an invalid cpf before calling the API", func(t *testing.T) {
		rec := h.post(t, "/clients/new", url.Values{
			"name":    {"Maria"},
			"cpf":     {"12345"},
			"address": {"Rua A, 1"},
			"phone":   {"(11) 91234-5678"},
			"email":   {"maria@example.com"},
		})

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "must be a valid CPF")
		assert.Zero(t, h.registry.Clients.Len())
	})

	t.Run("Should create a valid client", func(t *testing.T) {
		rec := h.post(t, "/clients/new", url.Values{
			"name":    {"Maria"},
			"cpf":     {"123.456.789-00"},
			"address": {"Rua A, 1"},
			"phone":   {"(11) 91234-5678"},
			"email":   {"maria@example.com"},
		})

		assertRedirect(t, rec, "/clients", "success")
		assert.Equal(t, 1, h.registry.Clients.Len())
	})
}

func TestBackendUnavailable(t *testing.T) {
	h := newHarness(t, false)
	h.backend.Close()

	t.Run("Should show the load error on the list", func(t *testing.T) {
		rec := h.get(t, "/categories")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed to load categories")
	})

	t.Run("Should keep the input when saving fails", func(t *testing.T) {
		rec := h.post(t, "/categories/new", url.Values{"name": {"freios"}, "description": {"Freios"}})

		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "Could not save the category")
		assert.Contains(t, rec.Body.String(), `value="freios"`)
	})
}

func TestRecoveryAfterOutage(t *testing.T) {
	h := newHarness(t, true)
	h.down.Store(true)

	t.Run("Should show the error while the API is down", func(t *testing.T) {
		rec := h.get(t, "/categories")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "failed to load categories")
		assert.Contains(t, rec.Body.String(), `action="/categories/refresh"`)
		assert.Equal(t, store.StateFailed, h.registry.Categories.State())
		assert.Zero(t, h.registry.Categories.Len())
	})

	t.Run("Should report the load error instead of not found when editing", func(t *testing.T) {
		rec := h.get(t, "/categories/edit/c1")

		q := assertRedirect(t, rec, "/categories", "error")
		assert.Contains(t, q.Get("notice"), "Could not load categories")
		assert.Contains(t, q.Get("notice"), "503")
	})

	t.Run("Should reload the list once the API is back", func(t *testing.T) {
		h.down.Store(false)

		rec := h.get(t, "/categories")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "failed to load categories")
		assert.Contains(t, rec.Body.String(), "freios")
		assert.Equal(t, store.StateReady, h.registry.Categories.State())
		assert.Equal(t, 5, h.registry.Categories.Len())
	})

	t.Run("Should pick up changes made behind the store on reload", func(t *testing.T) {
		b, err := json.Marshal(model.Category{Name: "eletrica", Description: "Elétrica"})
		require.NoError(t, err)
		resp, err := h.backend.Client().Post(h.backend.URL+"/categories", "application/json", bytes.NewReader(b))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		h.get(t, "/categories")
		assert.Equal(t, 5, h.registry.Categories.Len())

		rec := h.post(t, "/categories/refresh", nil)
		q := assertRedirect(t, rec, "/categories", "success")
		assert.Equal(t, "Categories reloaded", q.Get("notice"))
		assert.Equal(t, 6, h.registry.Categories.Len())
	})

	t.Run("Should report a failed reload", func(t *testing.T) {
		h.down.Store(true)
		defer h.down.Store(false)

		rec := h.post(t, "/categories/refresh", nil)

		q := assertRedirect(t, rec, "/categories", "error")
		assert.Contains(t, q.Get("notice"), "Could not reload categories")
		assert.Equal(t, 6, h.registry.Categories.Len())
	})
}

func TestOperationalRoutes(t *testing.T) {
	h := newHarness(t, false)

	t.Run("Should report store states", func(t *testing.T) {
		rec := h.get(t, "/healthz")
		require.Equal(t, http.StatusOK, rec.Code)

		var res struct {
			Status string            `json:"status"`
			Stores map[string]string `json:"stores"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
		assert.Equal(t, "ok", res.Status)
		assert.Equal(t, "IDLE", res.Stores["clients"])
	})

	t.Run("Should answer 404 for unknown pages", func(t *testing.T) {
		rec := h.get(t, "/widgets")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should expose metrics", func(t *testing.T) {
		rec := h.get(t, "/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "autoparts_http_requests_total")
	})
}
