package testutil

import (
	"context"
	"time"

	"github.com/shopfront/shopfront/internal/config"
	"github.com/shopfront/shopfront/internal/domain/loyalty"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/postgres"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopfront/shopfront/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	OrderRepo  order.Repository
	ReturnRepo returnrequest.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	stores      Stores
	publisher   *InMemoryEventPublisher
	db          postgres.IClient
	logger      *logger.Logger
	config      *config.Configuration
	pointsTable *loyalty.TierTable
	now         time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	_, err := validator.NewValidator()
	s.Require().NoError(err)

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	cfg.Returns.CompletionRetryIntervalMs = 1

	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	s.pointsTable = loyalty.DefaultTable()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		OrderRepo:  NewInMemoryOrderStore(),
		ReturnRepo: NewInMemoryReturnStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.publisher = NewInMemoryEventPublisher()
}

func (s *BaseServiceTestSuite) clearStores() {
	if store, ok := s.stores.OrderRepo.(*InMemoryOrderStore); ok {
		store.Clear()
	}
	if store, ok := s.stores.ReturnRepo.(*InMemoryReturnStore); ok {
		store.Clear()
	}
	s.publisher.Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// SetStores replaces the repositories, e.g. with fault-injecting wrappers
func (s *BaseServiceTestSuite) SetStores(stores Stores) {
	s.stores = stores
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryEventPublisher {
	return s.publisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetPointsTable returns the loyalty table services price with
func (s *BaseServiceTestSuite) GetPointsTable() *loyalty.TierTable {
	return s.pointsTable
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
