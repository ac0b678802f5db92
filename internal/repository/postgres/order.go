package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/cache"
	"github.com/shopfront/shopfront/internal/domain/order"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/postgres"
	"github.com/shopfront/shopfront/internal/types"
)

var orderColumns = []string{
	"id", "order_number", "customer_id", "customer_email", "currency", "order_status",
	"subtotal_cents", "discount_cents", "bonus_points_redeemed", "points_discount_cents",
	"shipping_cost_cents", "total_cents", "returns_version", "metadata",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

var orderLineItemColumns = []string{
	"id", "order_id", "product_id", "name", "variations", "unit_price_cents", "quantity",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

var orderSortColumns = map[string]string{
	"created_at":   "created_at",
	"total_cents":  "total_cents",
	"order_number": "order_number",
}

type orderRepository struct {
	db     postgres.IClient
	logger *logger.Logger
	cache  cache.Cache
}

// NewOrderRepository creates the sqlx backed order repository.
// Orders are immutable once placed apart from returns_version, so Get is
// cached outside of transactions.
func NewOrderRepository(db postgres.IClient, logger *logger.Logger, cache cache.Cache) order.Repository {
	return &orderRepository{
		db:     db,
		logger: logger,
		cache:  cache,
	}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	r.logger.Debugw("creating order",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"line_items", len(o.LineItems),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)

		query := `
			INSERT INTO orders (
				id, order_number, customer_id, customer_email, currency, order_status,
				subtotal_cents, discount_cents, bonus_points_redeemed, points_discount_cents,
				shipping_cost_cents, total_cents, returns_version, metadata,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :order_number, :customer_id, :customer_email, :currency, :order_status,
				:subtotal_cents, :discount_cents, :bonus_points_redeemed, :points_discount_cents,
				:shipping_cost_cents, :total_cents, :returns_version, :metadata,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		if _, err := q.NamedExecContext(ctx, query, o); err != nil {
			return wrapError(err, "order", "create")
		}

		lineQuery := `
			INSERT INTO order_line_items (
				id, order_id, product_id, name, variations, unit_price_cents, quantity,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :order_id, :product_id, :name, :variations, :unit_price_cents, :quantity,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		for _, item := range o.LineItems {
			if _, err := q.NamedExecContext(ctx, lineQuery, item); err != nil {
				return wrapError(err, "order line item", "create")
			}
		}
		return nil
	})
}

func (r *orderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	// reads inside a transaction must see the current returns_version
	_, inTx := postgres.GetTx(ctx)
	if !inTx {
		if cached := r.getCache(ctx, id); cached != nil {
			return cached, nil
		}
	}

	query, args, err := psql.Select(orderColumns...).
		From("orders").
		Where(squirrel.Eq{"id": id, "status": types.StatusPublished}).
		ToSql()
	if err != nil {
		return nil, wrapError(err, "order", "build query for")
	}

	var o order.Order
	if err := r.db.Querier(ctx).GetContext(ctx, &o, query, args...); err != nil {
		return nil, wrapError(err, "order", "get")
	}

	if err := r.loadLineItems(ctx, []*order.Order{&o}); err != nil {
		return nil, err
	}

	r.setCache(ctx, &o)
	return &o, nil
}

func (r *orderRepository) List(ctx context.Context, filter *types.OrderFilter) ([]*order.Order, error) {
	if filter == nil {
		filter = types.NewOrderFilter()
	}

	sb := applyQueryFilter(
		r.whereOrders(psql.Select(orderColumns...).From("orders"), filter),
		filter, filter.TimeRangeFilter, orderSortColumns,
	)
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, wrapError(err, "orders", "build query for")
	}

	orders := make([]*order.Order, 0)
	if err := r.db.Querier(ctx).SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, wrapError(err, "orders", "list")
	}

	if err := r.loadLineItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Count(ctx context.Context, filter *types.OrderFilter) (int, error) {
	if filter == nil {
		filter = types.NewOrderFilter()
	}

	sb := applyWhereFilter(
		r.whereOrders(psql.Select("COUNT(*)").From("orders"), filter),
		filter, filter.TimeRangeFilter,
	)
	query, args, err := sb.ToSql()
	if err != nil {
		return 0, wrapError(err, "orders", "build query for")
	}

	var count int
	if err := r.db.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, wrapError(err, "orders", "count")
	}
	return count, nil
}

func (r *orderRepository) IncrementReturnsVersion(ctx context.Context, id string, expected int64) error {
	query, args, err := psql.Update("orders").
		Set("returns_version", squirrel.Expr("returns_version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("updated_by", types.GetUserID(ctx)).
		Where(squirrel.Eq{"id": id, "returns_version": expected}).
		ToSql()
	if err != nil {
		return wrapError(err, "order", "build query for")
	}

	result, err := r.db.Querier(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return wrapError(err, "order", "update")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapError(err, "order", "update")
	}
	if rows == 0 {
		return ierr.NewError("order returns version changed").
			WithHint("Another return for this order was completed at the same time. Please retry.").
			WithReportableDetails(map[string]any{
				"order_id":         id,
				"expected_version": expected,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	r.deleteCache(ctx, id)
	r.logger.Debugw("incremented order returns version",
		"order_id", id,
		"returns_version", expected+1,
	)
	return nil
}

func (r *orderRepository) whereOrders(sb squirrel.SelectBuilder, filter *types.OrderFilter) squirrel.SelectBuilder {
	if len(filter.OrderIDs) > 0 {
		sb = sb.Where(squirrel.Eq{"id": filter.OrderIDs})
	}
	if filter.CustomerID != "" {
		sb = sb.Where(squirrel.Eq{"customer_id": filter.CustomerID})
	}
	if len(filter.OrderStatus) > 0 {
		sb = sb.Where(squirrel.Eq{"order_status": lo.Map(filter.OrderStatus, func(s types.OrderStatus, _ int) string {
			return string(s)
		})})
	}
	return sb
}

func (r *orderRepository) loadLineItems(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := lo.Map(orders, func(o *order.Order, _ int) string { return o.ID })
	query, args, err := psql.Select(orderLineItemColumns...).
		From("order_line_items").
		Where(squirrel.Eq{"order_id": ids, "status": types.StatusPublished}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return wrapError(err, "order line items", "build query for")
	}

	items := make([]*order.OrderLineItem, 0)
	if err := r.db.Querier(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		return wrapError(err, "order line items", "list")
	}

	byOrder := lo.GroupBy(items, func(item *order.OrderLineItem) string { return item.OrderID })
	for _, o := range orders {
		o.LineItems = byOrder[o.ID]
		if o.LineItems == nil {
			o.LineItems = make([]*order.OrderLineItem, 0)
		}
	}
	return nil
}

func (r *orderRepository) setCache(ctx context.Context, o *order.Order) {
	span := cache.StartCacheSpan(ctx, "order", "set", map[string]interface{}{
		"order_id": o.ID,
	})
	defer cache.FinishSpan(span)

	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixOrder, o.ID), o, 0)
}

func (r *orderRepository) getCache(ctx context.Context, id string) *order.Order {
	span := cache.StartCacheSpan(ctx, "order", "get", map[string]interface{}{
		"order_id": id,
	})
	defer cache.FinishSpan(span)

	if value, found := r.cache.Get(ctx, cache.GenerateKey(cache.PrefixOrder, id)); found {
		if o, ok := value.(*order.Order); ok {
			return o
		}
	}
	return nil
}

func (r *orderRepository) deleteCache(ctx context.Context, id string) {
	span := cache.StartCacheSpan(ctx, "order", "delete", map[string]interface{}{
		"order_id": id,
	})
	defer cache.FinishSpan(span)

	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixOrder, id))
}
