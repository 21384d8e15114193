package queries

import (
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// GetRelationshipQuery fetches one relationship with endpoint names
type GetRelationshipQuery struct {
	RelationshipID string
}

// Validate validates the GetRelationshipQuery
func (q GetRelationshipQuery) Validate() error {
	if q.RelationshipID == "" {
		return pkgerrors.NewValidationError("relationship ID is required")
	}
	return nil
}

// ListContactRelationshipsQuery lists every relationship touching a contact
type ListContactRelationshipsQuery struct {
	ContactID string
}

// Validate validates the ListContactRelationshipsQuery
func (q ListContactRelationshipsQuery) Validate() error {
	if q.ContactID == "" {
		return pkgerrors.NewValidationError("contact ID is required")
	}
	return nil
}

// ListContactRelationshipsResult is the relationship list response body
type ListContactRelationshipsResult struct {
	Relationships []RelationshipView `json:"relationships"`
}
