package queries

import (
	"time"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
)

// PhoneView is a phone number as returned to clients
type PhoneView struct {
	ID    string  `json:"id"`
	Label *string `json:"label"`
	Phone string  `json:"phone"`
}

// EmailView is an email address as returned to clients
type EmailView struct {
	ID    string  `json:"id"`
	Label *string `json:"label"`
	Email string  `json:"email"`
}

// ContactView is a full contact with its phones and emails
type ContactView struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"displayName"`
	Note        *string     `json:"note"`
	Phones      []PhoneView `json:"phones"`
	Emails      []EmailView `json:"emails"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ContactSummary is a search row without phones and emails
type ContactSummary struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Note        *string   `json:"note"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// RelationshipView is a relationship with both endpoint display names
type RelationshipView struct {
	ID              string    `json:"id"`
	FromContactID   string    `json:"fromContactId"`
	ToContactID     string    `json:"toContactId"`
	Type            string    `json:"type"`
	Directed        bool      `json:"directed"`
	Strength        *int      `json:"strength"`
	Note            *string   `json:"note"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	FromDisplayName string    `json:"fromDisplayName"`
	ToDisplayName   string    `json:"toDisplayName"`
}

// NewContactView converts a contact entity; phones and emails are never nil
func NewContactView(c *entities.Contact) *ContactView {
	v := &ContactView{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Note:        c.Note,
		Phones:      make([]PhoneView, 0, len(c.Phones)),
		Emails:      make([]EmailView, 0, len(c.Emails)),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	for _, p := range c.Phones {
		v.Phones = append(v.Phones, PhoneView{ID: p.ID, Label: p.Label, Phone: p.Phone})
	}
	for _, e := range c.Emails {
		v.Emails = append(v.Emails, EmailView{ID: e.ID, Label: e.Label, Email: e.Email})
	}
	return v
}

// NewContactSummary converts a contact entity to a search row
func NewContactSummary(c *entities.Contact) ContactSummary {
	return ContactSummary{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Note:        c.Note,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NewRelationshipView converts a relationship entity with resolved names
func NewRelationshipView(r *entities.Relationship, fromName, toName string) RelationshipView {
	return RelationshipView{
		ID:              r.ID,
		FromContactID:   r.FromContactID,
		ToContactID:     r.ToContactID,
		Type:            r.Type,
		Directed:        r.Directed,
		Strength:        r.Strength,
		Note:            r.Note,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		FromDisplayName: fromName,
		ToDisplayName:   toName,
	}
}
