package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-crm/pkg/event"
	"github.com/jwalitptl/clinic-crm/pkg/metrics"
)

type chanBroker struct {
	messages  chan []byte
	subErr    error
	subscribe string
}

func (b *chanBroker) Publish(context.Context, string, interface{}) error { return nil }
func (b *chanBroker) Ping(context.Context) error                         { return nil }
func (b *chanBroker) Close() error                                       { return nil }

func (b *chanBroker) Subscribe(_ context.Context, channel string) (<-chan []byte, error) {
	b.subscribe = channel
	if b.subErr != nil {
		return nil, b.subErr
	}
	return b.messages, nil
}

func consumed(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func TestEventLogWorkerConsumes(t *testing.T) {
	broker := &chanBroker{messages: make(chan []byte, 4)}
	m := metrics.New("test")
	w := NewEventLogWorker(broker, "", m)

	evt, err := json.Marshal(event.ChangeEvent{
		ID:         uuid.New(),
		Type:       event.ClientCreated,
		EntityID:   7,
		OccurredAt: time.Now(),
		Payload:    json.RawMessage(`{"id":7}`),
	})
	require.NoError(t, err)
	broker.messages <- evt
	broker.messages <- []byte("not json")
	close(broker.messages)

	err = w.Start(context.Background())
	assert.Error(t, err)
	assert.Equal(t, event.DefaultChannel, broker.subscribe)
	assert.Equal(t, 1.0, consumed(t, m, "test_worker_events_consumed_total"))
	assert.Equal(t, 1.0, consumed(t, m, "test_worker_events_invalid_total"))
}

func TestEventLogWorkerStopsOnCancel(t *testing.T) {
	broker := &chanBroker{messages: make(chan []byte)}
	w := NewEventLogWorker(broker, "custom", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestEventLogWorkerSubscribeError(t *testing.T) {
	broker := &chanBroker{subErr: errors.New("redis down")}
	err := NewEventLogWorker(broker, "crm.events", nil).Start(context.Background())
	assert.ErrorContains(t, err, "redis down")
}
