package queries

import (
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// GetLocalGraphQuery expands the neighbourhood of a contact. Depth outside
// 1..3 is clamped; zero means the default of 1. Empty Types means every type.
type GetLocalGraphQuery struct {
	ContactID string
	Depth     int
	Types     []string
}

// Validate validates the GetLocalGraphQuery
func (q GetLocalGraphQuery) Validate() error {
	if q.ContactID == "" {
		return pkgerrors.NewValidationError("contactId is required")
	}
	return nil
}
