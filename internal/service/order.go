package service

import (
	"context"

	"github.com/shopfront/shopfront/internal/api/dto"
	"github.com/shopfront/shopfront/internal/domain/order"
	"github.com/shopfront/shopfront/internal/types"
)

type OrderService interface {
	// CreateOrder prices the cart with the checkout rules and stores the order
	// with the amounts that later refunds are computed against
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error)
	ListOrders(ctx context.Context, filter *types.OrderFilter) (*dto.ListOrdersResponse, error)
}

type orderService struct {
	ServiceParams
}

func NewOrderService(params ServiceParams) OrderService {
	return &orderService{
		ServiceParams: params,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	quote := priceCart(s.ServiceParams, req.ToCartEstimateRequest())
	o := req.ToOrder(ctx, quote)

	err := s.DB.WithTx(ctx, func(tx context.Context) error {
		return s.OrderRepo.Create(tx, o)
	})
	if err != nil {
		s.Logger.Errorw("failed to create order",
			"error", err,
			"customer_id", req.CustomerID,
		)
		return nil, err
	}

	s.Logger.Infow("order created",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"total_cents", o.TotalCents,
		"line_items_count", len(o.LineItems),
	)

	s.publishOrderEvent(ctx, types.EventOrderPlaced, o)

	return &dto.OrderResponse{Order: o}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*dto.OrderResponse, error) {
	o, err := s.OrderRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.OrderResponse{Order: o}, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter *types.OrderFilter) (*dto.ListOrdersResponse, error) {
	if filter == nil {
		filter = types.NewOrderFilter()
	}

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	orders, err := s.OrderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.OrderRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListOrdersResponse{
		Items: make([]*dto.OrderResponse, len(orders)),
	}
	for i, o := range orders {
		response.Items[i] = &dto.OrderResponse{Order: o}
	}
	response.Pagination = types.NewPaginationResponse(total, filter.GetLimit(), filter.GetOffset())

	return response, nil
}

func (s *orderService) publishOrderEvent(ctx context.Context, eventName types.EventName, o *order.Order) {
	s.publishEvent(ctx, eventName, map[string]interface{}{"order_id": o.ID}, types.OrderEventPayload{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID,
		TotalCents:  o.TotalCents,
		Currency:    o.Currency,
	})
}
