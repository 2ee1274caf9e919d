package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/metric"
)

const MetricsPath = "/metrics"

// Metrics records request counts and latency labelled by the matched chi
// route pattern, so ids in the path do not create new series.
func Metrics(m *metric.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == MetricsPath {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()

			m.InflightRequests.Inc()
			defer m.InflightRequests.Dec()

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(t1).Seconds())
		})
	}
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return "<unknown>"
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return "<unknown>"
}
