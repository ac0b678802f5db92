package order

import (
	"context"

	"github.com/shopfront/shopfront/internal/types"
)

// Repository defines the persistence operations for orders
type Repository interface {
	// Create stores the order together with its line items
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, filter *types.OrderFilter) ([]*Order, error)
	Count(ctx context.Context, filter *types.OrderFilter) (int, error)

	// IncrementReturnsVersion bumps the order's returns version from
	// expected to expected+1. It fails with ErrVersionConflict when another
	// completion got there first.
	IncrementReturnsVersion(ctx context.Context, id string, expected int64) error
}
