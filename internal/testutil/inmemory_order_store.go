package testutil

import (
	"context"
	"maps"
	"time"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/order"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
)

// InMemoryOrderStore implements order.Repository for testing
type InMemoryOrderStore struct {
	*InMemoryStore[*order.Order]
}

var _ order.Repository = (*InMemoryOrderStore)(nil)

func NewInMemoryOrderStore() *InMemoryOrderStore {
	return &InMemoryOrderStore{
		InMemoryStore: NewInMemoryStore(copyOrder),
	}
}

func copyOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}

	cp := *o
	cp.Metadata = maps.Clone(o.Metadata)
	cp.LineItems = lo.Map(o.LineItems, func(l *order.OrderLineItem, _ int) *order.OrderLineItem {
		line := *l
		line.Variations = maps.Clone(l.Variations)
		return &line
	})
	return &cp
}

func orderFilterFn(ctx context.Context, o *order.Order, filter interface{}) bool {
	f, ok := filter.(*types.OrderFilter)
	if !ok || f == nil {
		return true
	}

	if !CheckStatusFilter(o.Status, f) {
		return false
	}
	if len(f.OrderIDs) > 0 && !lo.Contains(f.OrderIDs, o.ID) {
		return false
	}
	if f.CustomerID != "" && f.CustomerID != o.CustomerID {
		return false
	}
	if len(f.OrderStatus) > 0 && !lo.Contains(f.OrderStatus, o.OrderStatus) {
		return false
	}
	if f.TimeRangeFilter != nil {
		if f.StartTime != nil && o.CreatedAt.Before(*f.StartTime) {
			return false
		}
		if f.EndTime != nil && o.CreatedAt.After(*f.EndTime) {
			return false
		}
	}
	return true
}

func orderSortFn(i, j *order.Order) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryOrderStore) Create(ctx context.Context, o *order.Order) error {
	if o.ID == "" {
		return ierr.NewError("order ID is required").Mark(ierr.ErrValidation)
	}

	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	if o.Status == "" {
		o.Status = types.StatusPublished
	}

	return s.InMemoryStore.Create(ctx, o.ID, o)
}

func (s *InMemoryOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Order %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return o, nil
}

func (s *InMemoryOrderStore) List(ctx context.Context, filter *types.OrderFilter) ([]*order.Order, error) {
	return s.InMemoryStore.List(ctx, filter, orderFilterFn, orderSortFn)
}

func (s *InMemoryOrderStore) Count(ctx context.Context, filter *types.OrderFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, orderFilterFn)
}

func (s *InMemoryOrderStore) IncrementReturnsVersion(ctx context.Context, id string, expected int64) error {
	return s.InMemoryStore.Mutate(ctx, id, func(o *order.Order) (*order.Order, error) {
		if o.ReturnsVersion != expected {
			return nil, ierr.NewError("order returns version changed").
				WithHintf("Another return of order %s was completed concurrently", id).
				WithReportableDetails(map[string]any{
					"order_id": id,
					"expected": expected,
					"actual":   o.ReturnsVersion,
				}).
				Mark(ierr.ErrVersionConflict)
		}
		o.ReturnsVersion++
		o.UpdatedAt = time.Now().UTC()
		return o, nil
	})
}
