package service

import (
	"github.com/shopfront/shopfront/internal/testutil"
)

// newTestServiceParams wires the suite's in-memory stores into services
func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		nil,
		s.GetStores().OrderRepo,
		s.GetStores().ReturnRepo,
		s.GetPointsTable(),
		s.GetPublisher(),
	)
}
