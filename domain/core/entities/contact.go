package entities

import (
	"sort"
	"strings"
	"time"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/valueobjects"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// Phone is one phone number row of a contact.
type Phone struct {
	ID         string
	Label      *string
	Phone      string
	Normalized string
}

// Email is one email address row of a contact.
type Email struct {
	ID    string
	Label *string
	Email string
}

// PhoneInput and EmailInput carry caller-supplied rows before ids are assigned.
type PhoneInput struct {
	Label *string
	Phone string
}

type EmailInput struct {
	Label *string
	Email string
}

// ContactRef is the minimal view of a contact used by graph traversal and
// relationship listings.
type ContactRef struct {
	ID          string
	DisplayName string
}

// Contact is a person in the address book together with their phones and emails.
type Contact struct {
	ID          string
	DisplayName string
	Note        *string
	Phones      []Phone
	Emails      []Email
	CreatedAt   time.Time
	UpdatedAt   time.Time

	events []events.DomainEvent
}

// NewContact validates input and builds a contact, raising ContactCreated.
// Blank phone and email rows are dropped.
func NewContact(id, displayName string, note *string, phones []PhoneInput, emails []EmailInput, now time.Time) (*Contact, error) {
	if id == "" {
		return nil, pkgerrors.NewValidationError("contact id is required")
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, pkgerrors.NewValidationError("displayName is required")
	}

	c := &Contact{
		ID:          id,
		DisplayName: name,
		Note:        note,
		Phones:      buildPhones(phones),
		Emails:      buildEmails(emails),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.addEvent(events.NewContactCreated(id, name, now))
	return c, nil
}

// Update replaces the name, note and the full phone and email sets.
func (c *Contact) Update(displayName string, note *string, phones []PhoneInput, emails []EmailInput, now time.Time) error {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return pkgerrors.NewValidationError("displayName is required")
	}

	oldName := c.DisplayName
	c.DisplayName = name
	c.Note = note
	c.Phones = buildPhones(phones)
	c.Emails = buildEmails(emails)
	c.UpdatedAt = now

	c.addEvent(events.NewContactUpdated(c.ID, oldName, name, now))
	return nil
}

// MarkDeleted records the deletion event once the store has removed the contact.
func (c *Contact) MarkDeleted(removedRelationships int, now time.Time) {
	c.addEvent(events.NewContactDeleted(c.ID, removedRelationships, now))
}

// Ref returns the id and display name of the contact.
func (c *Contact) Ref() ContactRef {
	return ContactRef{ID: c.ID, DisplayName: c.DisplayName}
}

// Basic returns a copy without phone and email rows, as listed by search.
func (c *Contact) Basic() *Contact {
	return &Contact{
		ID:          c.ID,
		DisplayName: c.DisplayName,
		Note:        c.Note,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Matches reports whether the contact satisfies a search query. The query is
// matched case-insensitively as a substring of the display name, any email or
// any raw phone. The digits of the query are also matched against normalized
// phones, so "555-0100" finds "(555) 0100".
func (c *Contact) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.DisplayName), q) {
		return true
	}
	for _, e := range c.Emails {
		if strings.Contains(strings.ToLower(e.Email), q) {
			return true
		}
	}
	digits := valueobjects.NormalizePhone(q)
	for _, p := range c.Phones {
		if strings.Contains(strings.ToLower(p.Phone), q) {
			return true
		}
		if digits != "" && strings.Contains(p.Normalized, digits) {
			return true
		}
	}
	return false
}

// SortDetails orders phones by number and emails by address.
func (c *Contact) SortDetails() {
	sort.SliceStable(c.Phones, func(i, j int) bool { return c.Phones[i].Phone < c.Phones[j].Phone })
	sort.SliceStable(c.Emails, func(i, j int) bool { return c.Emails[i].Email < c.Emails[j].Email })
}

// GetUncommittedEvents returns events raised since the last commit
func (c *Contact) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the pending events
func (c *Contact) MarkEventsAsCommitted() {
	c.events = nil
}

func (c *Contact) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

func buildPhones(inputs []PhoneInput) []Phone {
	phones := make([]Phone, 0, len(inputs))
	for _, in := range inputs {
		phone := strings.TrimSpace(in.Phone)
		if phone == "" {
			continue
		}
		phones = append(phones, Phone{
			ID:         valueobjects.NewID(),
			Label:      in.Label,
			Phone:      phone,
			Normalized: valueobjects.NormalizePhone(phone),
		})
	}
	sort.SliceStable(phones, func(i, j int) bool { return phones[i].Phone < phones[j].Phone })
	return phones
}

func buildEmails(inputs []EmailInput) []Email {
	emails := make([]Email, 0, len(inputs))
	for _, in := range inputs {
		email := strings.TrimSpace(in.Email)
		if email == "" {
			continue
		}
		emails = append(emails, Email{
			ID:    valueobjects.NewID(),
			Label: in.Label,
			Email: email,
		})
	}
	sort.SliceStable(emails, func(i, j int) bool { return emails[i].Email < emails[j].Email })
	return emails
}

// CompareNames orders display names case-insensitively, falling back to id
// so ordering is total.
func CompareNames(a, b *Contact) int {
	if c := strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Clone returns a deep copy of the stored fields without pending events.
func (c *Contact) Clone() *Contact {
	out := c.Basic()
	out.Phones = append([]Phone(nil), c.Phones...)
	out.Emails = append([]Email(nil), c.Emails...)
	return out
}
