package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/correlationid"
)

var tracer = otel.Tracer("internal/resource")

// maxErrorBody caps how much of a failed response body is kept in a TransportError.
const maxErrorBody = 1 << 10

// Client issues CRUD requests against one REST collection endpoint.
// No operation retries; cancellation only comes from the caller's context.
type Client[T model.Entity[T]] interface {
	// List fetches every entity in the collection.
	List(ctx context.Context) ([]T, error)
	// Get fetches a single entity by id.
	Get(ctx context.Context, id string) (T, error)
	// Create posts a draft and returns the entity with its server-assigned id.
	Create(ctx context.Context, draft T) (T, error)
	// Update replaces the entity stored under id.
	Update(ctx context.Context, id string, entity T) (T, error)
	// Delete removes the entity stored under id.
	Delete(ctx context.Context, id string) error
}

// NewTransportClient returns an http.Client that propagates trace context.
// It has no timeout.
func NewTransportClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

type httpClient[T model.Entity[T]] struct {
	http          *http.Client
	collection    model.Collection
	collectionURL string
	logger        *slog.Logger
}

// NewHTTPClient creates a client bound to baseURL/collection.
func NewHTTPClient[T model.Entity[T]](
	hc *http.Client,
	baseURL string,
	collection model.Collection,
	logger *slog.Logger,
) (Client[T], error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	collectionURL, err := url.JoinPath(baseURL, collection.String())
	if err != nil {
		return nil, fmt.Errorf("join collection path: %w", err)
	}

	return &httpClient[T]{
		http:          hc,
		collection:    collection,
		collectionURL: collectionURL,
		logger:        logger.With(slog.String("collection", collection.String())),
	}, nil
}

func (c *httpClient[T]) List(ctx context.Context) ([]T, error) {
	ctx, span := c.startSpan(ctx, "List")
	defer span.End()

	var items []T
	if err := c.do(ctx, http.MethodGet, c.collectionURL, nil, &items); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if items == nil {
		items = []T{}
	}

	span.SetAttributes(attribute.Int("count", len(items)))
	return items, nil
}

func (c *httpClient[T]) Get(ctx context.Context, id string) (T, error) {
	ctx, span := c.startSpan(ctx, "Get", attribute.String("id", id))
	defer span.End()

	var entity T
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &entity); err != nil {
		recordSpanError(span, err)
		return entity, err
	}

	return entity, nil
}

func (c *httpClient[T]) Create(ctx context.Context, draft T) (T, error) {
	ctx, span := c.startSpan(ctx, "Create")
	defer span.End()

	var created T
	if err := c.do(ctx, http.MethodPost, c.collectionURL, draft.WithID(""), &created); err != nil {
		recordSpanError(span, err)
		return created, err
	}

	span.SetAttributes(attribute.String("id", created.GetID()))
	return created, nil
}

func (c *httpClient[T]) Update(ctx context.Context, id string, entity T) (T, error) {
	ctx, span := c.startSpan(ctx, "Update", attribute.String("id", id))
	defer span.End()

	var updated T
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), entity, &updated); err != nil {
		recordSpanError(span, err)
		return updated, err
	}

	return updated, nil
}

func (c *httpClient[T]) Delete(ctx context.Context, id string) error {
	ctx, span := c.startSpan(ctx, "Delete", attribute.String("id", id))
	defer span.End()

	if err := c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil); err != nil {
		recordSpanError(span, err)
		return err
	}

	return nil
}

func (c *httpClient[T]) itemURL(id string) string {
	return c.collectionURL + "/" + url.PathEscape(id)
}

// do performs one round trip. Any failure is returned as a TransportError
// wrapped in apperr.TransportErr.
func (c *httpClient[T]) do(ctx context.Context, method, target string, body, out any) error {
	transportErr := func(status int, respBody string, err error) error {
		return apperr.TransportErr.WrapParent(&TransportError{
			Method:     method,
			URL:        target,
			StatusCode: status,
			Body:       respBody,
			Err:        err,
		})
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return transportErr(0, "", fmt.Errorf("marshal request body: %w", err))
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return transportErr(0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := correlationid.FromContext(ctx); ok {
		req.Header.Set(correlationid.Header, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, "resource request failed",
			slog.String("method", method),
			slog.String("url", target),
			slog.Any("error", err))
		return transportErr(0, "", err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "resource request",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		//nolint:errcheck
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return transportErr(resp.StatusCode, strings.TrimSpace(string(snippet)), nil)
	}

	if out == nil {
		//nolint:errcheck
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportErr(resp.StatusCode, "", fmt.Errorf("decode response body: %w", err))
	}

	return nil
}

func (c *httpClient[T]) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("collection", c.collection.String()))
	return tracer.Start(ctx, "ResourceClient."+op,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "resource request failed")
}
