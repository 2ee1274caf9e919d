package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

type CleanupFunc func(ctx context.Context) error

// ShutdownTimeout bounds how long Shutdown waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// Run serves handler on port in the background until the returned cleanup is
// called. The listener is bound before Run returns, so a port conflict is
// reported to the caller instead of crashing the goroutine.
func Run(ctx context.Context, logger *slog.Logger, port uint32, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}
