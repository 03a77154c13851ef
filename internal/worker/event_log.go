package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/pkg/event"
	"github.com/jwalitptl/clinic-crm/pkg/messaging"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
)

// EventLogWorker subscribes to the change-event channel and writes every
// event to the structured log.
type EventLogWorker struct {
	broker  messaging.Broker
	channel string
	metrics *metrics.Metrics
}

func NewEventLogWorker(broker messaging.Broker, channel string, m *metrics.Metrics) *EventLogWorker {
	if channel == "" {
		channel = event.DefaultChannel
	}
	return &EventLogWorker{
		broker:  broker,
		channel: channel,
		metrics: m,
	}
}

// Start blocks until ctx is cancelled or the subscription closes.
func (w *EventLogWorker) Start(ctx context.Context) error {
	messages, err := w.broker.Subscribe(ctx, w.channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", w.channel, err)
	}
	log.Info().Str("channel", w.channel).Msg("event worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event worker shutting down")
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to %s closed", w.channel)
			}
			w.handle(msg)
		}
	}
}

func (w *EventLogWorker) handle(msg []byte) {
	var evt event.ChangeEvent
	if err := json.Unmarshal(msg, &evt); err != nil || evt.Type == "" {
		if w.metrics != nil {
			w.metrics.EventsInvalid.Inc()
		}
		log.Warn().Err(err).Int("size", len(msg)).Msg("discarding malformed event")
		return
	}

	if w.metrics != nil {
		w.metrics.EventsConsumed.WithLabelValues(string(evt.Type)).Inc()
	}
	log.Info().
		Str("event_id", evt.ID.String()).
		Str("event_type", string(evt.Type)).
		Int64("entity_id", evt.EntityID).
		Time("occurred_at", evt.OccurredAt).
		RawJSON("payload", payloadOrNull(evt.Payload)).
		Msg("change event")
}

func payloadOrNull(p json.RawMessage) []byte {
	if len(p) == 0 {
		return []byte("null")
	}
	return p
}
