package events

import "time"

// Event type names as published on the event bus.
const (
	TypeContactCreated      = "contact.created"
	TypeContactUpdated      = "contact.updated"
	TypeContactDeleted      = "contact.deleted"
	TypeRelationshipCreated = "relationship.created"
	TypeRelationshipDeleted = "relationship.deleted"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, ts time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   ts,
		Version:     1,
	}
}

// Contact events

// ContactCreated is raised when a new contact is stored
type ContactCreated struct {
	BaseEvent
	DisplayName string `json:"display_name"`
}

func NewContactCreated(contactID, displayName string, ts time.Time) ContactCreated {
	return ContactCreated{
		BaseEvent:   newBase(contactID, TypeContactCreated, ts),
		DisplayName: displayName,
	}
}

// ContactUpdated is raised when a contact's fields are replaced
type ContactUpdated struct {
	BaseEvent
	OldDisplayName string `json:"old_display_name"`
	NewDisplayName string `json:"new_display_name"`
}

func NewContactUpdated(contactID, oldName, newName string, ts time.Time) ContactUpdated {
	return ContactUpdated{
		BaseEvent:      newBase(contactID, TypeContactUpdated, ts),
		OldDisplayName: oldName,
		NewDisplayName: newName,
	}
}

// ContactDeleted is raised after a contact and its relationships are removed
type ContactDeleted struct {
	BaseEvent
	RemovedRelationships int `json:"removed_relationships"`
}

func NewContactDeleted(contactID string, removed int, ts time.Time) ContactDeleted {
	return ContactDeleted{
		BaseEvent:            newBase(contactID, TypeContactDeleted, ts),
		RemovedRelationships: removed,
	}
}

// Relationship events

// RelationshipCreated is raised when two contacts are linked
type RelationshipCreated struct {
	BaseEvent
	FromContactID string `json:"from_contact_id"`
	ToContactID   string `json:"to_contact_id"`
	Type          string `json:"type"`
	Directed      bool   `json:"directed"`
}

func NewRelationshipCreated(relID, from, to, relType string, directed bool, ts time.Time) RelationshipCreated {
	return RelationshipCreated{
		BaseEvent:     newBase(relID, TypeRelationshipCreated, ts),
		FromContactID: from,
		ToContactID:   to,
		Type:          relType,
		Directed:      directed,
	}
}

// RelationshipDeleted is raised when a relationship is removed
type RelationshipDeleted struct {
	BaseEvent
	FromContactID string `json:"from_contact_id"`
	ToContactID   string `json:"to_contact_id"`
}

func NewRelationshipDeleted(relID, from, to string, ts time.Time) RelationshipDeleted {
	return RelationshipDeleted{
		BaseEvent:     newBase(relID, TypeRelationshipDeleted, ts),
		FromContactID: from,
		ToContactID:   to,
	}
}
