package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// RequestErrorHandler writes the response for a request rejected by OpenAPI.
type RequestErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// OpenAPIValidator rejects requests that do not match the operation declared
// for them in spec. Requests with no matching operation pass through so the
// router can answer 404 or 405 itself.
func OpenAPIValidator(spec []byte, onError RequestErrorHandler) (func(http.Handler) http.Handler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	// the spec documents servers for humans; matching is on paths only
	doc.Servers = nil

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("create openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validateRequest(router, r); err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func validateRequest(router routers.Router, r *http.Request) error {
	route, pathParams, err := router.FindRoute(r)
	if err != nil {
		return nil
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    r,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}

	return openapi3filter.ValidateRequest(r.Context(), input)
}
