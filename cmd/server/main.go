package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/shopfront/internal/api"
	v1 "github.com/shopfront/shopfront/internal/api/v1"
	"github.com/shopfront/shopfront/internal/cache"
	"github.com/shopfront/shopfront/internal/config"
	"github.com/shopfront/shopfront/internal/domain/loyalty"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/migrations"
	"github.com/shopfront/shopfront/internal/postgres"
	"github.com/shopfront/shopfront/internal/publisher"
	"github.com/shopfront/shopfront/internal/pubsub"
	"github.com/shopfront/shopfront/internal/pubsub/memory"
	pubsubRouter "github.com/shopfront/shopfront/internal/pubsub/router"
	"github.com/shopfront/shopfront/internal/repository"
	"github.com/shopfront/shopfront/internal/sentry"
	"github.com/shopfront/shopfront/internal/service"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopfront/shopfront/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Pricing rules
			loyalty.DefaultTable,

			// Event Publisher
			memory.NewPubSub,
			publisher.NewEventPublisher,

			// Repositories
			repository.NewOrderRepository,
			repository.NewReturnRepository,

			// PubSub
			pubsubRouter.NewRouter,
		),
	)

	// Monitoring and Postgres
	opts = append(opts,
		sentry.Module(),
		postgres.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewCartService,
			service.NewOrderService,
			service.NewReturnService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			validator.NewValidator,
			runMigrations,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	cartService service.CartService,
	orderService service.OrderService,
	returnService service.ReturnService,
) api.Handlers {
	return api.Handlers{
		Health: v1.NewHealthHandler(logger),
		Cart:   v1.NewCartHandler(cartService, logger),
		Order:  v1.NewOrderHandler(orderService, logger),
		Return: v1.NewReturnHandler(returnService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger, sentry *sentry.Service) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger, sentry)
}

// runMigrations applies pending goose migrations when postgres.auto_migrate is set
func runMigrations(cfg *config.Configuration, db *postgres.DB, log *logger.Logger) error {
	if !cfg.Postgres.AutoMigrate {
		return nil
	}

	log.Info("applying database migrations")
	if err := migrations.Up(db.DB.DB); err != nil {
		log.Errorw("failed to apply migrations", "error", err)
		return err
	}
	return nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	router *pubsubRouter.Router,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, ps, cfg, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	ps pubsub.PubSub,
	cfg *config.Configuration,
	logger *logger.Logger,
) {
	if !cfg.Events.Enabled {
		return
	}

	// Register handlers before starting the router
	router.AddNoPublishHandler(
		publisher.EventLogHandlerName,
		cfg.Events.Topic,
		ps,
		publisher.NewEventLogHandler(logger),
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting message router")
			go func() {
				if err := router.Run(context.Background()); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			return router.Close()
		},
	})
}
