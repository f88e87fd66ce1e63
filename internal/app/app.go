package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/annaigorevna5/sensual-beauty/internal/cart"
	"github.com/annaigorevna5/sensual-beauty/internal/catalog"
	"github.com/annaigorevna5/sensual-beauty/internal/checkout"
	"github.com/annaigorevna5/sensual-beauty/internal/config"
	"github.com/annaigorevna5/sensual-beauty/internal/domain"
	"github.com/annaigorevna5/sensual-beauty/internal/event"
	handler "github.com/annaigorevna5/sensual-beauty/internal/handler/http"
	redisrepo "github.com/annaigorevna5/sensual-beauty/internal/repository/redis"
	"github.com/annaigorevna5/sensual-beauty/pkg/health"
	pkgkafka "github.com/annaigorevna5/sensual-beauty/pkg/kafka"
	"github.com/annaigorevna5/sensual-beauty/pkg/middleware"
	"github.com/annaigorevna5/sensual-beauty/pkg/tracing"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
// An unreachable Redis or Kafka does not fail startup: the cart degrades to
// empty and events are dropped, while readiness reports the outage.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Tracing (disabled by default).
	tracingShutdown, err := tracing.Init(ctx, tracing.Config{
		Enabled:        cfg.TracingEnabled,
		ServiceName:    "storefront",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SampleRate:     cfg.TraceSampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	// Redis client.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, cart starts empty",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
	}

	// Kafka producer.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Catalog is required: the storefront cannot run without products.
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		slog.String("path", cfg.CatalogPath),
		slog.Int("products", cat.Len()),
	)

	// Build the dependency graph.
	repo := redisrepo.NewCartRepository(rdb, cfg.CartStorageKey)
	store := cart.NewStore(ctx, repo, logger)
	query := catalog.NewQuery(cat, cfg.PageSize, cfg.PageIncrement, cfg.MaxPriceFilter)
	eventProducer := event.NewProducer(producer, logger)
	checkoutSvc := checkout.NewService(store, eventProducer, logger)

	// Every cart mutation is announced on Kafka, fire-and-forget.
	store.Subscribe(func(snap domain.CartSnapshot) {
		publishCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if len(snap.Items) == 0 {
			if err := eventProducer.PublishCartCleared(publishCtx); err != nil {
				logger.Warn("cart.cleared publish failed", slog.String("error", err.Error()))
			}
			return
		}
		if err := eventProducer.PublishCartUpdated(publishCtx, snap); err != nil {
			logger.Warn("cart.updated publish failed", slog.String("error", err.Error()))
		}
	})

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		Catalog:    cat,
		Query:      query,
		CartStore:  store,
		Checkout:   checkoutSvc,
		Health:     healthHandler,
		Logger:     logger,
		CORS:       corsCfg,
		PprofCIDRs: cfg.PprofAllowedCIDRs,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:             cfg,
		logger:          logger,
		rdb:             rdb,
		producer:        producer,
		httpServer:      httpServer,
		tracingShutdown: tracingShutdown,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	if err := a.tracingShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
