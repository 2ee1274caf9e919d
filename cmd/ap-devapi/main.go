package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tuanvumaihuynh/autoparts-admin/internal/config"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/http/api"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/log"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/model"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/repository"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/service"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/storage/db"
	"github.com/tuanvumaihuynh/autoparts-admin/internal/telemetry"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/cmdutil"
	"github.com/tuanvumaihuynh/autoparts-admin/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running development api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		HTTP     config.HTTP
		Storage  config.Storage
		Postgres config.Postgres
		Otel     config.Otel
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log, "ap-devapi")

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	var (
		recordRepo repository.RecordRepository
		health     db.HealthChecker
	)
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		memRepo := repository.NewMemoryRecordRepository()
		recordRepo, health = memRepo, memRepo
	default:
		pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
		if err != nil {
			return fmt.Errorf("error creating pgx pool: %w", err)
		}
		defer pgxPool.Close()

		dbClient := db.NewClient(pgxPool)
		recordRepo, health = repository.NewPostgresRecordRepository(dbClient), dbClient
	}
	logger.InfoContext(ctx, "storage ready", slog.String("driver", cfg.Storage.Driver.String()))

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	services := api.Services{
		Products:   service.NewCollectionService[model.Product](model.CollectionProducts, recordRepo, v),
		Categories: service.NewCollectionService[model.Category](model.CollectionCategories, recordRepo, v),
		Suppliers:  service.NewCollectionService[model.Supplier](model.CollectionSuppliers, recordRepo, v),
		Clients:    service.NewCollectionService[model.Client](model.CollectionClients, recordRepo, v),
	}

	if cfg.Storage.Seed {
		if err := seed(ctx, logger, services); err != nil {
			return err
		}
	}

	svc := api.New(cfg.HTTP, logger, services, health)
	cleanup, err := svc.Run(ctx)
	if err != nil {
		return fmt.Errorf("error running api service: %w", err)
	}
	logger.InfoContext(ctx, "api service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

	<-cmdutil.InterruptChan()

	logger.InfoContext(ctx, "api service is shutting down")
	if err := cleanup(ctx); err != nil {
		logger.ErrorContext(ctx, "error shutting down api service", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "api service is stopped")

	return nil
}

// seed fills empty categories and suppliers with the default options the
// product form offers.
func seed(ctx context.Context, logger *slog.Logger, services api.Services) error {
	n, err := services.Categories.Seed(ctx, service.SeedCategories)
	if err != nil {
		return fmt.Errorf("error seeding categories: %w", err)
	}
	m, err := services.Suppliers.Seed(ctx, service.SeedSuppliers)
	if err != nil {
		return fmt.Errorf("error seeding suppliers: %w", err)
	}

	logger.InfoContext(ctx, "seed completed", slog.Int("categories", n), slog.Int("suppliers", m))
	return nil
}
