package swagger_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/swagger"
)

func TestSwaggerDocsRoute(t *testing.T) {
	r := chi.NewRouter()
	swagger.Register(r, "Auto-parts API <dev>", []byte("openapi: 3.0.3\n"))

	t.Run("Should get docs successfully", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, resp.Body.String(), "<!DOCTYPE html>")
		assert.Contains(t, resp.Body.String(), "<title>Auto-parts API &lt;dev&gt;</title>")
	})

	t.Run("Should serve the given spec", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/docs/openapi.yml", nil)
		resp := httptest.NewRecorder()

		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "application/yaml")
		assert.Equal(t, "openapi: 3.0.3\n", resp.Body.String())
	})
}
