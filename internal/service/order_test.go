package service

import (
	"encoding/json"
	"testing"

	"github.com/shopfront/shopfront/internal/api/dto"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/testutil"
	"github.com/shopfront/shopfront/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OrderServiceSuite struct {
	testutil.BaseServiceTestSuite
	service OrderService
}

func TestOrderService(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewOrderService(newTestServiceParams(&s.BaseServiceTestSuite))
}

// scenarioOrderRequest is A 3000x2 and B 4000x1 with a 1000 discount and
// default shipping, a total of 9495
func scenarioOrderRequest(customerID string) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		CustomerID:    customerID,
		CustomerEmail: "jane@example.com",
		LineItems: []dto.CreateOrderLineItemRequest{
			{
				ProductID:      "prod_a",
				Name:           "A",
				Variations:     types.Variations{"size": "M", "color": "blue"},
				UnitPriceCents: 3000,
				Quantity:       2,
			},
			{
				ProductID:      "prod_b",
				Name:           "B",
				UnitPriceCents: 4000,
				Quantity:       1,
			},
		},
		Discount: &dto.DiscountRequest{
			Type:  types.DiscountTypeFixed,
			Value: decimal.NewFromInt(1000),
		},
	}
}

func (s *OrderServiceSuite) TestCreateOrder() {
	resp, err := s.service.CreateOrder(s.GetContext(), scenarioOrderRequest("cust_1"))
	s.Require().NoError(err)

	s.NotEmpty(resp.ID)
	s.Contains(resp.OrderNumber, types.SHORT_ID_PREFIX_ORDER)
	s.Equal(types.OrderStatusPlaced, resp.OrderStatus)
	s.Equal("EUR", resp.Currency)
	s.Equal(int64(10000), resp.SubtotalCents)
	s.Equal(int64(1000), resp.DiscountCents)
	s.Equal(int64(495), resp.ShippingCostCents)
	s.Equal(int64(9495), resp.TotalCents)
	s.Len(resp.LineItems, 2)
	for _, line := range resp.LineItems {
		s.Equal(resp.ID, line.OrderID)
	}

	stored, err := s.GetStores().OrderRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(int64(9495), stored.TotalCents)
	s.Equal(int64(0), stored.ReturnsVersion)

	events := s.GetPublisher().EventsNamed(types.EventOrderPlaced)
	s.Require().Len(events, 1)
	var payload types.OrderEventPayload
	s.NoError(json.Unmarshal(events[0].Payload, &payload))
	s.Equal(resp.ID, payload.OrderID)
	s.Equal(int64(9495), payload.TotalCents)
}

func (s *OrderServiceSuite) TestCreateOrder_WithPoints() {
	req := scenarioOrderRequest("cust_1")
	req.Discount = nil
	req.BonusPointsToRedeem = 2000
	req.AvailableBonusPoints = 2500

	resp, err := s.service.CreateOrder(s.GetContext(), req)
	s.Require().NoError(err)
	s.Equal(int64(2000), resp.BonusPointsRedeemed)
	s.Equal(int64(1000), resp.PointsDiscountCents)
	s.Equal(int64(9495), resp.TotalCents)
}

func (s *OrderServiceSuite) TestCreateOrder_Validation() {
	tests := []struct {
		name   string
		mutate func(r *dto.CreateOrderRequest)
	}{
		{"missing customer", func(r *dto.CreateOrderRequest) { r.CustomerID = "" }},
		{"no line items", func(r *dto.CreateOrderRequest) { r.LineItems = nil }},
		{"zero quantity", func(r *dto.CreateOrderRequest) { r.LineItems[0].Quantity = 0 }},
		{"bad currency", func(r *dto.CreateOrderRequest) { r.Currency = "EURO" }},
		{"points over balance", func(r *dto.CreateOrderRequest) {
			r.BonusPointsToRedeem = 1000
			r.AvailableBonusPoints = 10
		}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := scenarioOrderRequest("cust_1")
			tt.mutate(req)
			_, err := s.service.CreateOrder(s.GetContext(), req)
			s.Error(err)
			s.True(ierr.IsValidation(err))
		})
	}
}

func (s *OrderServiceSuite) TestCreateOrder_DuplicateLines() {
	req := scenarioOrderRequest("cust_1")
	req.LineItems = append(req.LineItems, dto.CreateOrderLineItemRequest{
		ProductID:      "prod_a",
		Name:           "A",
		Variations:     types.Variations{"color": "blue", "size": "M"},
		UnitPriceCents: 5000,
		Quantity:       1,
	})

	_, err := s.service.CreateOrder(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsValidation(err))

	count, err := s.GetStores().OrderRepo.Count(s.GetContext(), types.NewOrderFilter())
	s.NoError(err)
	s.Equal(0, count)

	// same product in another size is a separate line
	req.LineItems[2].Variations = types.Variations{"color": "blue", "size": "L"}
	resp, err := s.service.CreateOrder(s.GetContext(), req)
	s.Require().NoError(err)
	s.Len(resp.LineItems, 3)
}

func (s *OrderServiceSuite) TestGetOrder() {
	created, err := s.service.CreateOrder(s.GetContext(), scenarioOrderRequest("cust_1"))
	s.Require().NoError(err)

	got, err := s.service.GetOrder(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.OrderNumber, got.OrderNumber)
	s.Len(got.LineItems, 2)

	_, err = s.service.GetOrder(s.GetContext(), "ord_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *OrderServiceSuite) TestListOrders() {
	for _, customerID := range []string{"cust_1", "cust_1", "cust_2"} {
		_, err := s.service.CreateOrder(s.GetContext(), scenarioOrderRequest(customerID))
		s.Require().NoError(err)
	}

	filter := types.NewOrderFilter()
	filter.CustomerID = "cust_1"
	resp, err := s.service.ListOrders(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 2)
	s.Equal(2, resp.Pagination.Total)

	resp, err = s.service.ListOrders(s.GetContext(), nil)
	s.NoError(err)
	s.Len(resp.Items, 3)
	s.Equal(types.FILTER_DEFAULT_LIMIT, resp.Pagination.Limit)
}
