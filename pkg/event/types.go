package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	AppointmentCreated EventType = "appointment.created"
	AppointmentUpdated EventType = "appointment.updated"
	AppointmentDeleted EventType = "appointment.deleted"
	ClientCreated      EventType = "client.created"
	ClientUpdated      EventType = "client.updated"
	ClientDeleted      EventType = "client.deleted"
)

// DefaultChannel is the broker channel change events are published on.
const DefaultChannel = "crm.events"

// ChangeEvent describes a committed mutation of a stored record.
type ChangeEvent struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	EntityID   int64           `json:"entity_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Emitter records change events. Services treat emission as best-effort and
// never fail a mutation because of it.
type Emitter interface {
	Emit(ctx context.Context, eventType EventType, entityID int64, payload interface{}) error
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, EventType, int64, interface{}) error { return nil }

// Nop returns an Emitter that discards every event.
func Nop() Emitter {
	return nopEmitter{}
}
