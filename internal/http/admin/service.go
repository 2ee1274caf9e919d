package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/apperr"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/metric"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/middleware"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/server"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/registry"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

var tracer = otel.Tracer("internal/http/admin")

// Service serves the admin screens. Every screen reads and writes through
// the registry's stores; none of them talks to the API directly.
type Service struct {
	cfg       config.Admin
	logger    *slog.Logger
	metrics   *metric.Metrics
	registry  *registry.Registry
	validator validator.Validator
	templates map[string]*template.Template
}

func New(
	cfg config.Admin,
	log *slog.Logger,
	reg *registry.Registry,
	v validator.Validator,
) (*Service, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:       cfg,
		logger:    log.With(slog.String("service", "admin")),
		metrics:   metric.New(),
		registry:  reg,
		validator: v,
		templates: templates,
	}, nil
}

func (s *Service) Run(ctx context.Context) (server.CleanupFunc, error) {
	return server.Run(ctx, s.logger, s.cfg.Port, s.Handler())
}

// Handler builds the router with every middleware and screen registered.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)
	s.RegisterHandlers(r)

	return r
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))
	r.Get("/healthz", s.healthz)
	r.Get("/", s.home)

	registerScreen(r, s, productScreen(s))
	registerScreen(r, s, categoryScreen(s))
	registerScreen(r, s, supplierScreen(s))
	registerScreen(r, s, clientScreen(s))

	r.NotFound(s.notFound)
}

type homeCard struct {
	Collection string
	Title      string
	Count      int
	Err        string
}

func (s *Service) home(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	reg := s.registry

	cards := []homeCard{
		card(ctx, "products", "Products", reg.Products),
		card(ctx, "categories", "Categories", reg.Categories),
		card(ctx, "suppliers", "Suppliers", reg.Suppliers),
		card(ctx, "clients", "Clients", reg.Clients),
	}

	s.render(w, r, http.StatusOK, pageHome, "Home", "", struct{ Cards []homeCard }{cards})
}

type counter interface {
	loader
	Len() int
	ErrMessage() (string, bool)
}

func card(ctx context.Context, collection, title string, st counter) homeCard {
	//nolint:errcheck
	load(ctx, st)

	c := homeCard{Collection: collection, Title: title, Count: st.Len()}
	if msg, ok := st.ErrMessage(); ok {
		c.Err = msg
	}
	return c
}

func (s *Service) healthz(w http.ResponseWriter, r *http.Request) {
	reg := s.registry
	res := struct {
		Status string            `json:"status"`
		Stores map[string]string `json:"stores"`
	}{
		Status: "ok",
		Stores: map[string]string{
			"products":   reg.Products.State().String(),
			"categories": reg.Categories.State().String(),
			"suppliers":  reg.Suppliers.State().String(),
			"clients":    reg.Clients.State().String(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding health response", slog.Any("error", err))
	}
}

func (s *Service) notFound(w http.ResponseWriter, r *http.Request) {
	err := apperr.UnknownCollectionErr.WrapParent(fmt.Errorf("no screen for %s", r.URL.Path))
	s.logger.InfoContext(r.Context(), "unknown admin page", slog.Any("error", err))

	s.renderWithNotice(w, r, http.StatusNotFound, pageHome, "Not found", "",
		&notice{Level: noticeError, Message: "Page not found: " + r.URL.Path},
		struct{ Cards []homeCard }{})
}

type navItem struct {
	Collection string
	Title      string
}

var nav = []navItem{
	{"products", "Products"},
	{"categories", "Categories"},
	{"suppliers", "Suppliers"},
	{"clients", "Clients"},
}

const (
	noticeSuccess = "success"
	noticeError   = "error"
	noticeInfo    = "info"
)

type notice struct {
	Level   string
	Message string
}

type layoutData struct {
	Title   string
	Active  string
	Nav     []navItem
	Notice  *notice
	Content any
}

// render writes page with the notice carried by the request's query string, if any.
func (s *Service) render(w http.ResponseWriter, r *http.Request, status int, page, title, active string, content any) {
	var n *notice
	if msg := r.URL.Query().Get("notice"); msg != "" {
		level := r.URL.Query().Get("level")
		if level != noticeSuccess && level != noticeError {
			level = noticeInfo
		}
		n = &notice{Level: level, Message: msg}
	}

	s.renderWithNotice(w, r, status, page, title, active, n, content)
}

func (s *Service) renderWithNotice(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	page, title, active string,
	n *notice,
	content any,
) {
	var buf bytes.Buffer
	err := s.templates[page].ExecuteTemplate(&buf, "layout", layoutData{
		Title:   title,
		Active:  active,
		Nav:     nav,
		Notice:  n,
		Content: content,
	})
	if err != nil {
		s.logger.ErrorContext(r.Context(), "error rendering page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

// redirect sends the browser to target with a notice shown on arrival.
func redirect(w http.ResponseWriter, r *http.Request, target, level, message string) {
	q := url.Values{}
	q.Set("notice", message)
	q.Set("level", level)

	http.Redirect(w, r, target+"?"+q.Encode(), http.StatusSeeOther)
}
