package repository

import (
	"github.com/shopfront/shopfront/internal/cache"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/postgres"
	postgresRepo "github.com/shopfront/shopfront/internal/repository/postgres"
)

func NewOrderRepository(db postgres.IClient, logger *logger.Logger, cache cache.Cache) order.Repository {
	return postgresRepo.NewOrderRepository(db, logger, cache)
}

func NewReturnRepository(db postgres.IClient, logger *logger.Logger) returnrequest.Repository {
	return postgresRepo.NewReturnRepository(db, logger)
}
