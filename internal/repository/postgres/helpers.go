package postgres

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/types"
)

// psql builds queries with postgres $n placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const pqUniqueViolation = "23505"

// wrapError marks a driver error with the matching sentinel
func wrapError(err error, entity string, op string) error {
	if err == nil {
		return nil
	}

	if ierr.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			Mark(ierr.ErrNotFound)
	}

	var pqErr *pq.Error
	if ierr.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(map[string]any{
				"constraint": pqErr.Constraint,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	return ierr.WithError(err).
		WithMessage(fmt.Sprintf("failed to %s %s", op, entity)).
		Mark(ierr.ErrDatabase)
}

// applyQueryFilter adds status, time range, sort and pagination.
// Sort columns outside allowed fall back to created_at.
func applyQueryFilter(
	sb squirrel.SelectBuilder,
	filter types.BaseFilter,
	timeRange *types.TimeRangeFilter,
	allowed map[string]string,
) squirrel.SelectBuilder {
	sb = applyWhereFilter(sb, filter, timeRange)

	column, ok := allowed[filter.GetSort()]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if filter.GetOrder() == types.OrderAsc {
		direction = "ASC"
	}
	sb = sb.OrderBy(column+" "+direction, "id "+direction)

	if !filter.IsUnlimited() {
		sb = sb.Limit(uint64(filter.GetLimit())).Offset(uint64(filter.GetOffset()))
	}
	return sb
}

// applyWhereFilter adds the conditions shared by list and count queries
func applyWhereFilter(sb squirrel.SelectBuilder, filter types.BaseFilter, timeRange *types.TimeRangeFilter) squirrel.SelectBuilder {
	if status := filter.GetStatus(); status != "" {
		sb = sb.Where(squirrel.Eq{"status": status})
	}
	if timeRange != nil {
		if timeRange.StartTime != nil {
			sb = sb.Where(squirrel.GtOrEq{"created_at": *timeRange.StartTime})
		}
		if timeRange.EndTime != nil {
			sb = sb.Where(squirrel.Lt{"created_at": *timeRange.EndTime})
		}
	}
	return sb
}
