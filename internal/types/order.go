package types

import (
	"github.com/samber/lo"
	ierr "github.com/shopfront/shopfront/internal/errors"
)

// OrderStatus is the fulfilment state of a placed order
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Validate() error {
	allowed := []OrderStatus{
		OrderStatusPlaced,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid order status").
			WithHintf("Order status must be one of %v", allowed).
			WithReportableDetails(map[string]any{
				"status":  s,
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// OrderFilter filters orders in list queries
type OrderFilter struct {
	*QueryFilter
	*TimeRangeFilter

	OrderIDs    []string      `json:"order_ids,omitempty" form:"order_ids"`
	CustomerID  string        `json:"customer_id,omitempty" form:"customer_id"`
	OrderStatus []OrderStatus `json:"order_status,omitempty" form:"order_status"`
}

func NewOrderFilter() *OrderFilter {
	return &OrderFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func NewNoLimitOrderFilter() *OrderFilter {
	return &OrderFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *OrderFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.TimeRangeFilter != nil {
		if err := f.TimeRangeFilter.Validate(); err != nil {
			return err
		}
	}
	for _, s := range f.OrderStatus {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *OrderFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *OrderFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return 0
	}
	return f.QueryFilter.GetOffset()
}

func (f *OrderFilter) GetSort() string {
	if f.QueryFilter == nil {
		return FILTER_DEFAULT_SORT
	}
	return f.QueryFilter.GetSort()
}

func (f *OrderFilter) GetOrder() string {
	if f.QueryFilter == nil {
		return FILTER_DEFAULT_ORDER
	}
	return f.QueryFilter.GetOrder()
}

func (f *OrderFilter) GetStatus() string {
	if f.QueryFilter == nil {
		return string(StatusPublished)
	}
	return f.QueryFilter.GetStatus()
}

func (f *OrderFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return false
	}
	return f.QueryFilter.IsUnlimited()
}
