package registry

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/resource"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/store"
)

// Registry owns one store per entity kind for the lifetime of the admin
// application. The stores never coordinate with each other.
type Registry struct {
	Products   *store.Store[model.Product]
	Categories *store.Store[model.Category]
	Suppliers  *store.Store[model.Supplier]
	Clients    *store.Store[model.Client]

	http *http.Client
}

type options struct {
	http  *http.Client
	store config.Store
}

type Option func(*options)

// WithHTTPClient shares hc between the stores instead of a traced default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.http = hc
	}
}

// WithStore sets the reconcile strategy used by every store.
func WithStore(cfg config.Store) Option {
	return func(o *options) {
		o.store = cfg
	}
}

func New(cfg config.API, logger *slog.Logger, opts ...Option) (*Registry, error) {
	o := options{store: config.Store{Reconcile: config.ReconcileMerge}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.http == nil {
		o.http = resource.NewTransportClient()
	}

	logger = logger.With(slog.String("service", "registry"))

	products, err := newStore[model.Product](cfg, o, logger, model.CollectionProducts)
	if err != nil {
		return nil, err
	}
	categories, err := newStore[model.Category](cfg, o, logger, model.CollectionCategories)
	if err != nil {
		return nil, err
	}
	suppliers, err := newStore[model.Supplier](cfg, o, logger, model.CollectionSuppliers)
	if err != nil {
		return nil, err
	}
	clients, err := newStore[model.Client](cfg, o, logger, model.CollectionClients)
	if err != nil {
		return nil, err
	}

	logger.Info("stores created",
		slog.String("base_url", cfg.BaseURL),
		slog.String("reconcile", o.store.Reconcile.String()))

	return &Registry{
		Products:   products,
		Categories: categories,
		Suppliers:  suppliers,
		Clients:    clients,
		http:       o.http,
	}, nil
}

func newStore[T model.Entity[T]](
	cfg config.API,
	o options,
	logger *slog.Logger,
	collection model.Collection,
) (*store.Store[T], error) {
	client, err := resource.NewHTTPClient[T](o.http, cfg.BaseURL, collection, logger)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", collection, err)
	}

	return store.New[T](o.store, logger, collection, client), nil
}

// Close tears every store down and releases idle connections. Operations
// still in flight complete but no longer reach any listener.
func (r *Registry) Close() {
	r.Products.Close()
	r.Categories.Close()
	r.Suppliers.Close()
	r.Clients.Close()

	r.http.CloseIdleConnections()
}
