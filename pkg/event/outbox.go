package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-crm/pkg/messaging"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
)

var ErrQueueFull = errors.New("outbox queue is full")

type OutboxConfig struct {
	Channel       string
	QueueSize     int
	RetryAttempts int
	RetryDelay    time.Duration
}

func DefaultOutboxConfig() OutboxConfig {
	return OutboxConfig{
		Channel:       DefaultChannel,
		QueueSize:     1024,
		RetryAttempts: 3,
		RetryDelay:    200 * time.Millisecond,
	}
}

// Outbox queues change events in memory and delivers them to a broker from
// a single goroutine started with Run. Emit never blocks.
type Outbox struct {
	broker  messaging.Broker
	config  OutboxConfig
	metrics *metrics.Metrics
	queue   chan ChangeEvent
	now     func() time.Time
}

func NewOutbox(broker messaging.Broker, config OutboxConfig, m *metrics.Metrics) (*Outbox, error) {
	if broker == nil {
		return nil, errors.New("broker must not be nil")
	}
	if m == nil {
		return nil, errors.New("metrics must not be nil")
	}
	if config.Channel == "" {
		return nil, errors.New("channel must not be empty")
	}
	if config.QueueSize <= 0 {
		return nil, errors.New("queue size must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		return nil, errors.New("retry attempts must be greater than 0")
	}
	if config.RetryDelay < 0 {
		return nil, errors.New("retry delay must not be negative")
	}

	return &Outbox{
		broker:  broker,
		config:  config,
		metrics: m,
		queue:   make(chan ChangeEvent, config.QueueSize),
		now:     time.Now,
	}, nil
}

func (o *Outbox) Emit(_ context.Context, eventType EventType, entityID int64, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	evt := ChangeEvent{
		ID:         uuid.New(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: o.now().UTC(),
		Payload:    raw,
	}

	select {
	case o.queue <- evt:
		o.metrics.OutboxQueueSize.Inc()
		return nil
	default:
		o.metrics.OutboxEventsDropped.Inc()
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is cancelled. Events still queued at
// that point are flushed with a short grace period.
func (o *Outbox) Run(ctx context.Context) {
	log.Info().Str("channel", o.config.Channel).Msg("starting outbox processor")

	for {
		select {
		case <-ctx.Done():
			o.flush()
			log.Info().Msg("shutting down outbox processor")
			return
		case evt := <-o.queue:
			o.metrics.OutboxQueueSize.Dec()
			o.processEvent(ctx, evt)
		}
	}
}

func (o *Outbox) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for {
		select {
		case evt := <-o.queue:
			o.metrics.OutboxQueueSize.Dec()
			o.processEvent(ctx, evt)
		default:
			return
		}
	}
}

func (o *Outbox) processEvent(ctx context.Context, evt ChangeEvent) {
	timer := prometheus.NewTimer(o.metrics.OutboxProcessingLatency)
	defer timer.ObserveDuration()

	attempt := 0
	err := retry(ctx, o.config.RetryAttempts, o.config.RetryDelay, func() error {
		if attempt > 0 {
			o.metrics.OutboxRetries.WithLabelValues(string(evt.Type)).Inc()
		}
		attempt++
		return o.broker.Publish(ctx, o.config.Channel, evt)
	})
	if err != nil {
		o.metrics.OutboxEventsFailed.Inc()
		log.Error().Err(err).
			Str("event_id", evt.ID.String()).
			Str("event_type", string(evt.Type)).
			Msg("failed to publish change event")
		return
	}
	o.metrics.OutboxEventsPublished.Inc()
}

// Helper retry function
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return err
}
