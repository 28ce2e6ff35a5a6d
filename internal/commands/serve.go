package commands

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-router/internal/api/http"
	"github.com/spec-kit/support-router/internal/api/http/handlers"
	"github.com/spec-kit/support-router/internal/classify"
	"github.com/spec-kit/support-router/internal/config"
	"github.com/spec-kit/support-router/internal/eventlog"
	"github.com/spec-kit/support-router/internal/intent"
	"github.com/spec-kit/support-router/internal/lifecycle"
	"github.com/spec-kit/support-router/internal/llm"
	"github.com/spec-kit/support-router/internal/lock"
	"github.com/spec-kit/support-router/internal/observability"
	"github.com/spec-kit/support-router/internal/orchestrator"
	"github.com/spec-kit/support-router/internal/persistence"
	"github.com/spec-kit/support-router/internal/store"
)

// ServeCmd runs the HTTP service.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the support message router HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open ticket store", zap.Error(err))
	}
	defer closeStore()

	var locker lock.KeyedLocker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		redis := persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
		locker = lock.NewRedisLocker(redis.Client, lock.NewLocalLocker(), logger)
	}

	sink := eventlog.Multi(
		eventlog.NewStoreSink(st, logger),
		eventlog.NewZapSink(logger),
		eventlog.NewKafkaSink(cfg.Kafka, logger),
	)

	detector := intent.NewDetector()
	if cfg.Intents.CatalogPath != "" {
		custom, err := intent.NewDetectorFromFile(cfg.Intents.CatalogPath)
		if err != nil {
			logger.Warn("intent catalog override rejected; using built-in catalog", zap.Error(err))
		} else {
			detector = custom
			logger.Info("loaded intent catalog override", zap.String("path", cfg.Intents.CatalogPath))
		}
	}

	var capability classify.Capability
	if client := llm.NewClient(cfg.Capability); client != nil {
		capability = client
		logger.Info("classification capability enabled", zap.String("model", cfg.Capability.Model))
	}
	classifier := classify.New(capability, cfg.Capability.Timeout(), sink, logger)

	manager := lifecycle.NewManager(lifecycle.Dependencies{
		Store:    st,
		Locks:    locker,
		Detector: detector,
		Sink:     sink,
		Logger:   logger,
	})

	router := orchestrator.New(orchestrator.Dependencies{
		Classifier:       classifier,
		Lifecycle:        manager,
		Store:            st,
		Sink:             sink,
		Logger:           logger,
		PreferCapability: capability != nil,
	})

	metrics := observability.NewMetrics()
	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(),
		Messages: handlers.NewMessagesHandler(router, logger),
		Tickets:  handlers.NewTicketsHandler(st),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	return nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.Postgres.DSN != "" {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, err
			}
		}
		return store.NewPostgresStore(pg.PoolHandle()), pg.Close, nil
	}

	db, err := persistence.NewSQLite(cfg.SQLite.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	return store.NewSQLiteStore(db), func() { _ = db.Close() }, nil
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
