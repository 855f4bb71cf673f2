package outbox

import (
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/grim/internal/shared/domain"
	"github.com/google/uuid"
)

// Message is one pending remote commit. Payload is the JSON form of the
// domain event that describes the local mutation.
type Message struct {
	ID               int64
	EventID          uuid.UUID
	OwnerID          uuid.UUID
	AggregateType    string
	AggregateID      uuid.UUID
	RoutingKey       string
	Payload          json.RawMessage
	Metadata         domain.EventMetadata
	CreatedAt        time.Time
	AppliedAt        *time.Time
	NextRetryAt      *time.Time
	RetryCount       int
	LastError        *string
	DeadLetteredAt   *time.Time
	DeadLetterReason *string
}

// NewMessage creates a commit message owned by ownerID from a domain event.
func NewMessage(ownerID uuid.UUID, event domain.DomainEvent) (*Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	metadata := event.Metadata()
	if metadata.UserID == uuid.Nil {
		metadata.UserID = ownerID
	}

	return &Message{
		EventID:       event.EventID(),
		OwnerID:       ownerID,
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID(),
		RoutingKey:    event.RoutingKey(),
		Payload:       payload,
		Metadata:      metadata,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// Decode unmarshals the payload into v.
func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// IsApplied returns true once the remote store accepted the commit.
func (m *Message) IsApplied() bool {
	return m.AppliedAt != nil
}

// IsDead returns true if the commit was given up on.
func (m *Message) IsDead() bool {
	return m.DeadLetteredAt != nil
}

// IsPending returns true while the commit still has to be attempted.
func (m *Message) IsPending() bool {
	return !m.IsApplied() && !m.IsDead()
}

// CanRetry returns true if the message can be retried.
func (m *Message) CanRetry(maxRetries int) bool {
	return m.RetryCount < maxRetries
}

// ReadyAt reports whether a retry delay has elapsed at now.
func (m *Message) ReadyAt(now time.Time) bool {
	return m.NextRetryAt == nil || !m.NextRetryAt.After(now)
}

// Clone returns a copy safe to hand to callers.
func (m *Message) Clone() *Message {
	c := *m
	c.Payload = append(json.RawMessage(nil), m.Payload...)
	return &c
}
