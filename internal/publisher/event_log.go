package publisher

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopfront/shopfront/internal/logger"
	"github.com/shopfront/shopfront/internal/types"
)

// EventLogHandlerName is the watermill handler name of the local event log
const EventLogHandlerName = "event_log"

// NewEventLogHandler returns a consumer that logs every domain event on the
// events topic. Local deployments run it in place of the mailer.
func NewEventLogHandler(logger *logger.Logger) func(msg *message.Message) error {
	return func(msg *message.Message) error {
		var event types.Event
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			// redelivery cannot fix a malformed payload
			logger.Errorw("dropping malformed event",
				"message_uuid", msg.UUID,
				"error", err,
			)
			return nil
		}

		logger.Infow("event received",
			"event_id", event.ID,
			"event_name", event.EventName,
			"request_id", msg.Metadata.Get(MetadataRequestID),
			"payload", string(event.Payload),
		)
		return nil
	}
}
