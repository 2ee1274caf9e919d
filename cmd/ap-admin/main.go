package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/admin"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/log"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/registry"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/telemetry"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/cmdutil"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running admin application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log   config.Log
		Admin config.Admin
		API   config.API
		Store config.Store
		Otel  config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log, "ap-admin")

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	reg, err := registry.New(cfg.API, logger, registry.WithStore(cfg.Store))
	if err != nil {
		return fmt.Errorf("error creating store registry: %w", err)
	}
	defer reg.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	svc, err := admin.New(cfg.Admin, logger, reg, v)
	if err != nil {
		return fmt.Errorf("error creating admin service: %w", err)
	}

	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running admin service: %w", err)
	}
	logger.InfoContext(ctx, "admin service started",
		slog.String("address", fmt.Sprintf(":%d", cfg.Admin.Port)),
		slog.String("api", cfg.API.BaseURL))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "admin service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down admin service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "admin service is stopped")

	return nil
}
