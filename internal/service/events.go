package service

import (
	"context"

	"github.com/shopfront/shopfront/internal/idempotency"
	"github.com/shopfront/shopfront/internal/types"
)

// eventID derives the id of an event from the entity state it reports, so a
// retried operation republishes under the same id and consumers can dedupe.
func (p ServiceParams) eventID(eventName types.EventName, params map[string]interface{}) string {
	keyParams := make(map[string]interface{}, len(params)+1)
	for k, v := range params {
		keyParams[k] = v
	}
	keyParams["event_name"] = eventName

	return p.IdempotencyGenerator.GenerateKey(idempotency.ScopeEvent, keyParams)
}

// publishEvent is fire and forget: a failed publish is logged and never
// fails the operation that produced the event.
func (p ServiceParams) publishEvent(ctx context.Context, eventName types.EventName, key map[string]interface{}, payload interface{}) {
	if p.EventPublisher == nil {
		return
	}

	event, err := types.NewEvent(eventName, payload)
	if err != nil {
		p.Logger.Errorw("failed to marshal event payload", "error", err, "event_name", eventName)
		return
	}
	if p.IdempotencyGenerator != nil && len(key) > 0 {
		event.ID = p.eventID(eventName, key)
	}

	if err := p.EventPublisher.Publish(ctx, event); err != nil {
		p.Logger.Errorf("failed to publish %s event: %v", event.EventName, err)
	}
}
