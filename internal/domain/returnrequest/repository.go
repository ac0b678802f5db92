package returnrequest

import (
	"context"

	"github.com/shopfront/shopfront/internal/types"
)

// Repository defines the persistence operations for return requests
type Repository interface {
	// Create stores the return together with its line items
	Create(ctx context.Context, r *ReturnRequest) error
	Get(ctx context.Context, id string) (*ReturnRequest, error)
	List(ctx context.Context, filter *types.ReturnFilter) ([]*ReturnRequest, error)
	Count(ctx context.Context, filter *types.ReturnFilter) (int, error)

	// Update persists status, refund and per-line adjudication. It fails with
	// ErrVersionConflict when r.Version no longer matches the stored row and
	// increments r.Version on success.
	Update(ctx context.Context, r *ReturnRequest) error

	// SumAcceptedQuantity returns the accepted quantity over completed
	// returns of the order, excluding excludeReturnID when set.
	SumAcceptedQuantity(ctx context.Context, orderID string, excludeReturnID string) (int64, error)

	// AcceptedQuantityByLine is SumAcceptedQuantity grouped by order line item id
	AcceptedQuantityByLine(ctx context.Context, orderID string, excludeReturnID string) (map[string]int64, error)
}
