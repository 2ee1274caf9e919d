package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/autoparts-admin/api-contract"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/apierr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/metric"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/middleware"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/server"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/swagger"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/service"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/storage/db"
)

var tracer = otel.Tracer("internal/http/api")

// Services groups the collection services exposed by the API.
type Services struct {
	Products   service.CollectionService[model.Product]
	Categories service.CollectionService[model.Category]
	Suppliers  service.CollectionService[model.Supplier]
	Clients    service.CollectionService[model.Client]
}

// Service is the development REST API the admin UI talks to.
type Service struct {
	cfg     config.HTTP
	logger  *slog.Logger
	metrics *metric.Metrics

	services Services
	health   db.HealthChecker
}

func New(
	cfg config.HTTP,
	log *slog.Logger,
	services Services,
	health db.HealthChecker,
) *Service {
	return &Service{
		cfg:      cfg,
		logger:   log.With(slog.String("service", "api")),
		metrics:  metric.New(),
		services: services,
		health:   health,
	}
}

func (s *Service) Run(ctx context.Context) (server.CleanupFunc, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	return server.Run(ctx, s.logger, s.cfg.Port, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler() (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r, "Auto-parts development API", apicontract.GetSpecBytes())
	}

	if err := s.RegisterHandlers(r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.AllowedOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) error {
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
	r.Get("/healthz", s.healthz)

	var collectionMiddlewares []func(http.Handler) http.Handler
	if s.cfg.ValidateRequests {
		validate, err := middleware.OpenAPIValidator(apicontract.GetSpecBytes(), s.handleRequestError)
		if err != nil {
			return fmt.Errorf("create openapi validator: %w", err)
		}
		collectionMiddlewares = append(collectionMiddlewares, validate)
	}

	r.Group(func(r chi.Router) {
		r.Use(collectionMiddlewares...)

		registerCollection(r, s, s.services.Products)
		registerCollection(r, s, s.services.Categories)
		registerCollection(r, s, s.services.Suppliers)
		registerCollection(r, s, s.services.Clients)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.handleResponseError(w, r, apperr.UnknownCollectionErr.WrapParent(fmt.Errorf("no route for %s", r.URL.Path)))
	})

	return nil
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if ok, err := s.health.IsHealthy(r.Context()); !ok {
			s.logger.WarnContext(r.Context(), "storage is unhealthy", slog.Any("error", err))
			s.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleRequestError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(apperr.ValidationErr.WrapParent(err))
	res.StatusCode = http.StatusBadRequest

	s.logger.InfoContext(r.Context(), "http request rejected", slog.Any("error", err))
	s.writeJSON(w, r, res.StatusCode, res)
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	s.writeJSON(w, r, res.StatusCode, res)
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}
