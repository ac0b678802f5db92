package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/shopfront/shopfront/internal/api/v1"
	"github.com/shopfront/shopfront/internal/config"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/rest/middleware"
	sentryService "github.com/shopfront/shopfront/internal/sentry"
	"github.com/shopfront/shopfront/internal/types"
)

type Handlers struct {
	Health *v1.HealthHandler
	Cart   *v1.CartHandler
	Order  *v1.OrderHandler
	Return *v1.ReturnHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, sentry *sentryService.Service) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(logger, sentry),
	)

	router.GET("/health", handlers.Health.Health)
	router.POST("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	v1Group.Use(middleware.GuestAuthenticateMiddleware)
	registerV1Routes(v1Group, handlers, cfg)

	admin := v1Group.Group("/admin")
	admin.Use(middleware.AdminAuthenticateMiddleware(cfg, logger))
	registerAdminRoutes(admin, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers, cfg *config.Configuration) {
	cart := router.Group("/cart")
	{
		cart.POST("/estimate", middleware.RateLimitMiddleware(cfg), handlers.Cart.Estimate)
	}

	orders := router.Group("/orders")
	{
		orders.POST("", handlers.Order.CreateOrder)
		orders.GET("", handlers.Order.ListOrders)
		orders.GET("/:id", handlers.Order.GetOrder)
	}

	returns := router.Group("/returns")
	{
		returns.POST("", handlers.Return.CreateReturn)
		returns.GET("", handlers.Return.ListReturns)
		returns.GET("/:id", handlers.Return.GetReturn)
	}
}

func registerAdminRoutes(router *gin.RouterGroup, handlers Handlers) {
	returns := router.Group("/returns")
	{
		returns.GET("", handlers.Return.ListReturns)
		returns.GET("/:id", handlers.Return.GetReturn)
		returns.POST("/:id/preview", handlers.Return.PreviewRefund)
		returns.POST("/:id/complete", handlers.Return.CompleteReturn)
		returns.POST("/:id/reject", handlers.Return.RejectReturn)
	}
}
