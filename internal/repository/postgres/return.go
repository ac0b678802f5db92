package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/samber/lo"
	"github.com/shopfront/shopfront/internal/domain/returnrequest"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/postgres"
	"github.com/shopfront/shopfront/internal/types"
)

var returnColumns = []string{
	"id", "return_number", "order_id", "customer_id", "return_status", "reason",
	"refund_cents", "shipping_refunded", "refund_method", "refund_reference", "admin_note",
	"completed_at", "version",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

var returnLineItemColumns = []string{
	"id", "return_id", "order_line_item_id", "product_id", "name", "variations",
	"unit_price_cents", "quantity", "accepted", "not_returned", "refund_percentage",
	"unit_refund_cents", "refund_cents",
	"status", "created_at", "updated_at", "created_by", "updated_by",
}

var returnSortColumns = map[string]string{
	"created_at":    "created_at",
	"completed_at":  "completed_at",
	"refund_cents":  "refund_cents",
	"return_number": "return_number",
}

type returnRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

func NewReturnRepository(db postgres.IClient, logger *logger.Logger) returnrequest.Repository {
	return &returnRepository{
		db:     db,
		logger: logger,
	}
}

func (r *returnRepository) Create(ctx context.Context, ret *returnrequest.ReturnRequest) error {
	r.logger.Debugw("creating return request",
		"return_id", ret.ID,
		"order_id", ret.OrderID,
		"line_items", len(ret.LineItems),
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)

		query := `
			INSERT INTO returns (
				id, return_number, order_id, customer_id, return_status, reason,
				refund_cents, shipping_refunded, refund_method, refund_reference, admin_note,
				completed_at, version,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :return_number, :order_id, :customer_id, :return_status, :reason,
				:refund_cents, :shipping_refunded, :refund_method, :refund_reference, :admin_note,
				:completed_at, :version,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		if _, err := q.NamedExecContext(ctx, query, ret); err != nil {
			return wrapError(err, "return", "create")
		}

		lineQuery := `
			INSERT INTO return_line_items (
				id, return_id, order_line_item_id, product_id, name, variations,
				unit_price_cents, quantity, accepted, not_returned, refund_percentage,
				unit_refund_cents, refund_cents,
				status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :return_id, :order_line_item_id, :product_id, :name, :variations,
				:unit_price_cents, :quantity, :accepted, :not_returned, :refund_percentage,
				:unit_refund_cents, :refund_cents,
				:status, :created_at, :updated_at, :created_by, :updated_by
			)`

		for _, item := range ret.LineItems {
			if _, err := q.NamedExecContext(ctx, lineQuery, item); err != nil {
				return wrapError(err, "return line item", "create")
			}
		}
		return nil
	})
}

func (r *returnRepository) Get(ctx context.Context, id string) (*returnrequest.ReturnRequest, error) {
	query, args, err := psql.Select(returnColumns...).
		From("returns").
		Where(squirrel.Eq{"id": id, "status": types.StatusPublished}).
		ToSql()
	if err != nil {
		return nil, wrapError(err, "return", "build query for")
	}

	var ret returnrequest.ReturnRequest
	if err := r.db.Querier(ctx).GetContext(ctx, &ret, query, args...); err != nil {
		return nil, wrapError(err, "return", "get")
	}

	if err := r.loadLineItems(ctx, []*returnrequest.ReturnRequest{&ret}); err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) List(ctx context.Context, filter *types.ReturnFilter) ([]*returnrequest.ReturnRequest, error) {
	if filter == nil {
		filter = types.NewReturnFilter()
	}

	sb := applyQueryFilter(
		r.whereReturns(psql.Select(returnColumns...).From("returns"), filter),
		filter, filter.TimeRangeFilter, returnSortColumns,
	)
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, wrapError(err, "returns", "build query for")
	}

	returns := make([]*returnrequest.ReturnRequest, 0)
	if err := r.db.Querier(ctx).SelectContext(ctx, &returns, query, args...); err != nil {
		return nil, wrapError(err, "returns", "list")
	}

	if err := r.loadLineItems(ctx, returns); err != nil {
		return nil, err
	}
	return returns, nil
}

func (r *returnRepository) Count(ctx context.Context, filter *types.ReturnFilter) (int, error) {
	if filter == nil {
		filter = types.NewReturnFilter()
	}

	sb := applyWhereFilter(
		r.whereReturns(psql.Select("COUNT(*)").From("returns"), filter),
		filter, filter.TimeRangeFilter,
	)
	query, args, err := sb.ToSql()
	if err != nil {
		return 0, wrapError(err, "returns", "build query for")
	}

	var count int
	if err := r.db.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, wrapError(err, "returns", "count")
	}
	return count, nil
}

func (r *returnRepository) Update(ctx context.Context, ret *returnrequest.ReturnRequest) error {
	r.logger.Debugw("updating return request",
		"return_id", ret.ID,
		"return_status", ret.ReturnStatus,
		"version", ret.Version,
	)

	return r.db.WithTx(ctx, func(ctx context.Context) error {
		q := r.db.Querier(ctx)

		query := `
			UPDATE returns SET
				return_status = :return_status,
				refund_cents = :refund_cents,
				shipping_refunded = :shipping_refunded,
				refund_method = :refund_method,
				refund_reference = :refund_reference,
				admin_note = :admin_note,
				completed_at = :completed_at,
				version = version + 1,
				updated_at = :updated_at,
				updated_by = :updated_by
			WHERE id = :id
			AND version = :version
			AND status = :status`

		result, err := q.NamedExecContext(ctx, query, ret)
		if err != nil {
			return wrapError(err, "return", "update")
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return wrapError(err, "return", "update")
		}
		if rows == 0 {
			return ierr.NewError("return version changed").
				WithHint("The return was modified by someone else. Reload it and try again.").
				WithReportableDetails(map[string]any{
					"return_id": ret.ID,
					"version":   ret.Version,
				}).
				Mark(ierr.ErrVersionConflict)
		}

		lineQuery := `
			UPDATE return_line_items SET
				accepted = :accepted,
				not_returned = :not_returned,
				refund_percentage = :refund_percentage,
				unit_refund_cents = :unit_refund_cents,
				refund_cents = :refund_cents,
				updated_at = :updated_at,
				updated_by = :updated_by
			WHERE id = :id
			AND return_id = :return_id`

		for _, item := range ret.LineItems {
			if _, err := q.NamedExecContext(ctx, lineQuery, item); err != nil {
				return wrapError(err, "return line item", "update")
			}
		}

		ret.Version++
		return nil
	})
}

func (r *returnRepository) SumAcceptedQuantity(ctx context.Context, orderID string, excludeReturnID string) (int64, error) {
	query, args, err := r.acceptedQuantityQuery(orderID, excludeReturnID).
		Columns("COALESCE(SUM(li.quantity), 0)").
		ToSql()
	if err != nil {
		return 0, wrapError(err, "returned quantity", "build query for")
	}

	var total int64
	if err := r.db.Querier(ctx).GetContext(ctx, &total, query, args...); err != nil {
		return 0, wrapError(err, "returned quantity", "sum")
	}
	return total, nil
}

func (r *returnRepository) AcceptedQuantityByLine(ctx context.Context, orderID string, excludeReturnID string) (map[string]int64, error) {
	query, args, err := r.acceptedQuantityQuery(orderID, excludeReturnID).
		Columns("li.order_line_item_id", "COALESCE(SUM(li.quantity), 0) AS quantity").
		GroupBy("li.order_line_item_id").
		ToSql()
	if err != nil {
		return nil, wrapError(err, "returned quantity", "build query for")
	}

	var rows []struct {
		OrderLineItemID string `db:"order_line_item_id"`
		Quantity        int64  `db:"quantity"`
	}
	if err := r.db.Querier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, wrapError(err, "returned quantity", "sum")
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.OrderLineItemID] = row.Quantity
	}
	return result, nil
}

// acceptedQuantityQuery selects accepted lines of completed returns of the order
func (r *returnRepository) acceptedQuantityQuery(orderID string, excludeReturnID string) squirrel.SelectBuilder {
	sb := psql.Select().
		From("return_line_items li").
		Join("returns r ON r.id = li.return_id").
		Where(squirrel.Eq{
			"r.order_id":      orderID,
			"r.return_status": string(types.ReturnStatusCompleted),
			"r.status":        string(types.StatusPublished),
			"li.accepted":     true,
		})
	if excludeReturnID != "" {
		sb = sb.Where(squirrel.NotEq{"r.id": excludeReturnID})
	}
	return sb
}

func (r *returnRepository) whereReturns(sb squirrel.SelectBuilder, filter *types.ReturnFilter) squirrel.SelectBuilder {
	if len(filter.ReturnIDs) > 0 {
		sb = sb.Where(squirrel.Eq{"id": filter.ReturnIDs})
	}
	if filter.OrderID != "" {
		sb = sb.Where(squirrel.Eq{"order_id": filter.OrderID})
	}
	if len(filter.ReturnStatus) > 0 {
		sb = sb.Where(squirrel.Eq{"return_status": lo.Map(filter.ReturnStatus, func(s types.ReturnStatus, _ int) string {
			return string(s)
		})})
	}
	return sb
}

func (r *returnRepository) loadLineItems(ctx context.Context, returns []*returnrequest.ReturnRequest) error {
	if len(returns) == 0 {
		return nil
	}

	ids := lo.Map(returns, func(ret *returnrequest.ReturnRequest, _ int) string { return ret.ID })
	query, args, err := psql.Select(returnLineItemColumns...).
		From("return_line_items").
		Where(squirrel.Eq{"return_id": ids, "status": types.StatusPublished}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return wrapError(err, "return line items", "build query for")
	}

	items := make([]*returnrequest.ReturnLineItem, 0)
	if err := r.db.Querier(ctx).SelectContext(ctx, &items, query, args...); err != nil {
		return wrapError(err, "return line items", "list")
	}

	byReturn := lo.GroupBy(items, func(item *returnrequest.ReturnLineItem) string { return item.ReturnID })
	for _, ret := range returns {
		ret.LineItems = byReturn[ret.ID]
		if ret.LineItems == nil {
			ret.LineItems = make([]*returnrequest.ReturnLineItem, 0)
		}
	}
	return nil
}
