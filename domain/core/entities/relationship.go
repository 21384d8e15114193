package entities

import (
	"strings"
	"time"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/valueobjects"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// DefaultRelationshipType is used when a relationship is created without a type.
const DefaultRelationshipType = "custom"

// Relationship is a typed link between two distinct contacts. Several
// relationships may connect the same pair.
type Relationship struct {
	ID            string
	FromContactID string
	ToContactID   string
	Type          string
	Directed      bool
	Strength      *int
	Note          *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	events []events.DomainEvent
}

// NewRelationship validates input and builds a relationship, raising
// RelationshipCreated. Endpoint existence is checked by the caller.
func NewRelationship(id, fromID, toID, relType string, directed bool, strength *int, note *string, now time.Time) (*Relationship, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("relationship id is required")
	}
	from := valueobjects.CleanID(fromID)
	to := valueobjects.CleanID(toID)
	if from == "" || to == "" {
		return nil, pkgerrors.NewValidationError("fromContactId and toContactId are required")
	}
	if from == to {
		return nil, pkgerrors.NewValidationError("cannot link contact to itself")
	}
	if err := valueobjects.ValidateStrength(strength); err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	t := strings.TrimSpace(relType)
	if t == "" {
		t = DefaultRelationshipType
	}

	r := &Relationship{
		ID:            id,
		FromContactID: from,
		ToContactID:   to,
		Type:          t,
		Directed:      directed,
		Strength:      strength,
		Note:          note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.addEvent(events.NewRelationshipCreated(id, from, to, t, directed, now))
	return r, nil
}

// Touches reports whether contactID is either endpoint.
func (r *Relationship) Touches(contactID string) bool {
	return r.FromContactID == contactID || r.ToContactID == contactID
}

// MarkDeleted records the deletion event once the store has removed it.
func (r *Relationship) MarkDeleted(now time.Time) {
	r.addEvent(events.NewRelationshipDeleted(r.ID, r.FromContactID, r.ToContactID, now))
}

// GetUncommittedEvents returns events raised since the last commit
func (r *Relationship) GetUncommittedEvents() []events.DomainEvent {
	return r.events
}

// MarkEventsAsCommitted clears the pending events
func (r *Relationship) MarkEventsAsCommitted() {
	r.events = nil
}

func (r *Relationship) addEvent(event events.DomainEvent) {
	r.events = append(r.events, event)
}

// Clone returns a copy of the stored fields without pending events.
func (r *Relationship) Clone() *Relationship {
	out := &Relationship{
		ID:            r.ID,
		FromContactID: r.FromContactID,
		ToContactID:   r.ToContactID,
		Type:          r.Type,
		Directed:      r.Directed,
		Note:          r.Note,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if r.Strength != nil {
		s := *r.Strength
		out.Strength = &s
	}
	return out
}
