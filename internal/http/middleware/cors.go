package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/tuanvumaihuynh/autoparts-admin/pkg/correlationid"
)

// Cors allows browser clients from origins to call the JSON API.
func Cors(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", correlationid.Header, "traceparent", "tracestate"},
		ExposedHeaders:   []string{correlationid.Header},
		AllowCredentials: false,
		MaxAge:           300,
	})
}
