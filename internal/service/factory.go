package service

import (
	"github.com/shopfront/shopfront/internal/config"
	"github.com/shopfront/shopfront/internal/domain/loyalty"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/refund"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	"github.com/shopfront/shopfront/internal/idempotency"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/postgres"
	"github.com/shopfront/shopfront/internal/publisher"
	sentryService "github.com/shopfront/shopfront/internal/sentry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Sentry *sentryService.Service

	// Repositories
	OrderRepo  order.Repository
	ReturnRepo returnrequest.Repository

	// Pricing
	PointsTable *loyalty.TierTable
	Calculator  refund.Calculator

	// Publishers
	EventPublisher       publisher.EventPublisher
	IdempotencyGenerator *idempotency.Generator
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	sentry *sentryService.Service,
	orderRepo order.Repository,
	returnRepo returnrequest.Repository,
	pointsTable *loyalty.TierTable,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		DB:             db,
		Sentry:         sentry,
		OrderRepo:      orderRepo,
		ReturnRepo:     returnRepo,
		PointsTable:    pointsTable,
		Calculator:     refund.NewCalculator(pointsTable),
		EventPublisher: eventPublisher,

		IdempotencyGenerator: idempotency.NewGenerator(),
	}
}
