package testutil

import (
	"context"
	"maps"
	"time"

	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
)

// InMemoryReturnStore implements returnrequest.Repository for testing
type InMemoryReturnStore struct {
	*InMemoryStore[*returnrequest.ReturnRequest]
}

var _ returnrequest.Repository = (*InMemoryReturnStore)(nil)

func NewInMemoryReturnStore() *InMemoryReturnStore {
	return &InMemoryReturnStore{
		InMemoryStore: NewInMemoryStore(copyReturn),
	}
}

func copyReturn(r *returnrequest.ReturnRequest) *returnrequest.ReturnRequest {
	if r == nil {
		return nil
	}

	cp := *r
	cp.LineItems = lo.Map(r.LineItems, func(l *returnrequest.ReturnLineItem, _ int) *returnrequest.ReturnLineItem {
		line := *l
		line.Variations = maps.Clone(l.Variations)
		return &line
	})
	return &cp
}

func returnFilterFn(ctx context.Context, r *returnrequest.ReturnRequest, filter interface{}) bool {
	f, ok := filter.(*types.ReturnFilter)
	if !ok || f == nil {
		return true
	}

	if !CheckStatusFilter(r.Status, f) {
		return false
	}
	if len(f.ReturnIDs) > 0 && !lo.Contains(f.ReturnIDs, r.ID) {
		return false
	}
	if f.OrderID != "" && f.OrderID != r.OrderID {
		return false
	}
	if len(f.ReturnStatus) > 0 && !lo.Contains(f.ReturnStatus, r.ReturnStatus) {
		return false
	}
	return true
}

func returnSortFn(i, j *returnrequest.ReturnRequest) bool {
	return i.CreatedAt.After(j.CreatedAt)
}

func (s *InMemoryReturnStore) Create(ctx context.Context, r *returnrequest.ReturnRequest) error {
	if r.ID == "" {
		return ierr.NewError("return ID is required").Mark(ierr.ErrValidation)
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	if r.Status == "" {
		r.Status = types.StatusPublished
	}

	return s.InMemoryStore.Create(ctx, r.ID, r)
}

func (s *InMemoryReturnStore) Get(ctx context.Context, id string) (*returnrequest.ReturnRequest, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Return %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return r, nil
}

func (s *InMemoryReturnStore) List(ctx context.Context, filter *types.ReturnFilter) ([]*returnrequest.ReturnRequest, error) {
	return s.InMemoryStore.List(ctx, filter, returnFilterFn, returnSortFn)
}

func (s *InMemoryReturnStore) Count(ctx context.Context, filter *types.ReturnFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, returnFilterFn)
}

func (s *InMemoryReturnStore) Update(ctx context.Context, r *returnrequest.ReturnRequest) error {
	err := s.InMemoryStore.Mutate(ctx, r.ID, func(stored *returnrequest.ReturnRequest) (*returnrequest.ReturnRequest, error) {
		if stored.Version != r.Version {
			return nil, ierr.NewError("return was modified concurrently").
				WithHintf("Return %s changed since it was loaded", r.ID).
				Mark(ierr.ErrVersionConflict)
		}
		updated := copyReturn(r)
		updated.Version++
		return updated, nil
	})
	if err != nil {
		return err
	}

	r.Version++
	return nil
}

func (s *InMemoryReturnStore) SumAcceptedQuantity(ctx context.Context, orderID string, excludeReturnID string) (int64, error) {
	byLine, err := s.AcceptedQuantityByLine(ctx, orderID, excludeReturnID)
	if err != nil {
		return 0, err
	}
	return lo.Sum(lo.Values(byLine)), nil
}

func (s *InMemoryReturnStore) AcceptedQuantityByLine(ctx context.Context, orderID string, excludeReturnID string) (map[string]int64, error) {
	out := make(map[string]int64)
	s.InMemoryStore.Each(func(r *returnrequest.ReturnRequest) {
		if r.OrderID != orderID || r.ID == excludeReturnID {
			return
		}
		if r.ReturnStatus != types.ReturnStatusCompleted || r.Status != types.StatusPublished {
			return
		}
		for _, line := range r.LineItems {
			if line.Accepted {
				out[line.OrderLineItemID] += line.Quantity
			}
		}
	})
	return out, nil
}
