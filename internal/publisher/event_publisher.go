package publisher

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopfront/shopfront/internal/config"
	ierr "github.com/shopfront/shopfront/internal/errors"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/pubsub"
	"github.com/shopfront/shopfront/internal/types"
)

// Metadata keys set on every published message
const (
	MetadataEventName = "event_name"
	MetadataRequestID = "request_id"
)

// EventPublisher publishes domain events on the configured topic
type EventPublisher interface {
	Publish(ctx context.Context, event *types.Event) error
}

type eventPublisher struct {
	pubsub pubsub.Publisher
	config *config.EventsConfig
	logger *logger.Logger
}

func NewEventPublisher(cfg *config.Configuration, pubsub pubsub.PubSub, logger *logger.Logger) EventPublisher {
	return &eventPublisher{
		pubsub: pubsub,
		config: &cfg.Events,
		logger: logger,
	}
}

func (p *eventPublisher) Publish(ctx context.Context, event *types.Event) error {
	if !p.config.Enabled {
		p.logger.Debugw("events disabled, dropping event",
			"event_id", event.ID,
			"event_name", event.EventName,
		)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithMessage("failed to marshal event").
			Mark(ierr.ErrSystem)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set(MetadataEventName, string(event.EventName))
	if requestID := types.GetRequestID(ctx); requestID != "" {
		msg.Metadata.Set(MetadataRequestID, requestID)
	}

	p.logger.Debugw("publishing event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"topic", p.config.Topic,
	)

	if err := p.pubsub.Publish(ctx, p.config.Topic, msg); err != nil {
		return ierr.WithError(err).
			WithMessagef("failed to publish %s", event.EventName).
			Mark(ierr.ErrSystem)
	}
	return nil
}
