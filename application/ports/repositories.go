package ports

import (
	"context"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
)

// ContactRepository defines the interface for contact persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type ContactRepository interface {
	// Create stores a new contact with its phones and emails atomically
	Create(ctx context.Context, contact *entities.Contact) error

	// Update replaces a stored contact, including its phone and email sets
	Update(ctx context.Context, contact *entities.Contact) error

	// Delete removes a contact with its phones and emails
	Delete(ctx context.Context, id string) error

	// GetByID retrieves a full contact, phones ordered by number and emails by address
	GetByID(ctx context.Context, id string) (*entities.Contact, error)

	// FindRef resolves the id and display name only; found is false for unknown ids
	FindRef(ctx context.Context, id string) (ref entities.ContactRef, found bool, err error)

	// Search returns contacts without phones/emails, ordered by display name
	Search(ctx context.Context, query string) ([]*entities.Contact, error)

	// List returns every full contact ordered by display name
	List(ctx context.Context) ([]*entities.Contact, error)
}

// RelationshipRepository defines the interface for relationship persistence
type RelationshipRepository interface {
	// Create stores a new relationship
	Create(ctx context.Context, rel *entities.Relationship) error

	// GetByID retrieves a relationship by its ID
	GetByID(ctx context.Context, id string) (*entities.Relationship, error)

	// Delete removes a relationship
	Delete(ctx context.Context, id string) error

	// ListByContact returns relationships touching the contact, newest update first
	ListByContact(ctx context.Context, contactID string) ([]*entities.Relationship, error)

	// ListIncident returns relationships touching the contact in insertion order,
	// restricted to the allowed types when the set is non-empty
	ListIncident(ctx context.Context, contactID string, allowed services.TypeSet) ([]*entities.Relationship, error)

	// DeleteByContact removes every relationship touching the contact and
	// returns how many were removed
	DeleteByContact(ctx context.Context, contactID string) (int, error)

	// List returns every relationship in insertion order
	List(ctx context.Context) ([]*entities.Relationship, error)
}

// HealthChecker is implemented by stores that can report readiness
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
