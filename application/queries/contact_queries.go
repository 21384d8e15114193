package queries

import (
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// GetContactQuery fetches one full contact
type GetContactQuery struct {
	ContactID string
}

// Validate validates the GetContactQuery
func (q GetContactQuery) Validate() error {
	if q.ContactID == "" {
		return pkgerrors.NewValidationError("contact ID is required")
	}
	return nil
}

// SearchContactsQuery matches contacts by name, email or phone. An empty
// query lists every contact.
type SearchContactsQuery struct {
	Query string
}

// Validate validates the SearchContactsQuery
func (q SearchContactsQuery) Validate() error {
	if len(q.Query) > 200 {
		return pkgerrors.NewValidationError("query must be at most 200 characters")
	}
	return nil
}

// SearchContactsResult is the search response body
type SearchContactsResult struct {
	Contacts []ContactSummary `json:"contacts"`
}
