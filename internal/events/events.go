package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published after a ledger transaction commits.
const (
	TypeTransactionRecorded = "ledger.transaction.recorded"
	TypeTransferCompleted   = "ledger.transfer.completed"
	TypeExpensePaid         = "ledger.expense.paid"
	TypeExpenseDeleted      = "ledger.expense.deleted"
	TypeExpenseReclassified = "ledger.expense.reclassified"
	TypeInvoicePaid         = "ledger.invoice.paid"
	TypeInvoiceLinked       = "ledger.invoice.linked"
	TypeInvoiceCancelled    = "ledger.invoice.cancelled"
	TypeAuditCompleted      = "ledger.audit.completed"
)

// Event is the envelope of every published message.
type Event struct {
	EventID    string          `json:"eventID"`
	Type       string          `json:"type"`
	EntityID   string          `json:"entityID"`
	ActorID    string          `json:"actorID,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// New builds an event with a fresh ID. payload is marshalled to JSON; a
// payload that cannot be marshalled is dropped from the envelope.
func New(eventType, entityID, actorID string, payload any) Event {
	e := Event{
		EventID:    uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if payload != nil {
		if body, err := json.Marshal(payload); err == nil {
			e.Payload = body
		}
	}
	return e
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event.
func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers committed ledger events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
