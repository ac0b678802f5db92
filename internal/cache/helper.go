package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// StartCacheSpan creates a span for a cache operation.
// Returns nil if no sentry hub is bound to ctx.
func StartCacheSpan(ctx context.Context, entity, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	span := sentry.StartSpan(ctx, "cache."+entity+"."+operation)
	span.Description = "cache." + entity + "." + operation
	span.Op = "db.cache"
	span.SetData("cache", entity)
	span.SetData("operation", operation)
	for k, v := range params {
		span.SetData(k, v)
	}

	return span
}

// FinishSpan finishes the span if it is not nil
func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}
