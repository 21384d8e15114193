package commands

import (
	"strings"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
	"github.com/Alexislovesarchitecture/contact-bubbles/pkg/utils"
)

// PhoneRow is a phone number as submitted by a client
type PhoneRow struct {
	Label *string `json:"label"`
	Phone string  `json:"phone" validate:"max=64"`
}

// EmailRow is an email address as submitted by a client
type EmailRow struct {
	Label *string `json:"label"`
	Email string  `json:"email" validate:"max=254"`
}

// CreateContactCommand creates a contact with its phones and emails
type CreateContactCommand struct {
	ContactID   string     `json:"contactId" validate:"required"`
	DisplayName string     `json:"displayName" validate:"max=200"`
	Note        *string    `json:"note"`
	Phones      []PhoneRow `json:"phones" validate:"max=50,dive"`
	Emails      []EmailRow `json:"emails" validate:"max=50,dive"`
}

// Validate validates the CreateContactCommand
func (c CreateContactCommand) Validate() error {
	if strings.TrimSpace(c.DisplayName) == "" {
		return pkgerrors.NewValidationError("displayName is required")
	}
	return utils.ValidateStruct(c)
}

// UpdateContactCommand replaces a contact's name, note, phones and emails
type UpdateContactCommand struct {
	ContactID   string     `json:"contactId" validate:"required"`
	DisplayName string     `json:"displayName" validate:"max=200"`
	Note        *string    `json:"note"`
	Phones      []PhoneRow `json:"phones" validate:"max=50,dive"`
	Emails      []EmailRow `json:"emails" validate:"max=50,dive"`
}

// Validate validates the UpdateContactCommand. A blank display name is
// rejected by the handler once the contact is known to exist.
func (c UpdateContactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteContactCommand deletes a contact and every relationship touching it
type DeleteContactCommand struct {
	ContactID string `json:"contactId" validate:"required"`
}

// Validate validates the DeleteContactCommand
func (c DeleteContactCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// PhoneInputs converts submitted rows to entity inputs
func PhoneInputs(rows []PhoneRow) []entities.PhoneInput {
	out := make([]entities.PhoneInput, 0, len(rows))
	for _, r := range rows {
		out = append(out, entities.PhoneInput{Label: r.Label, Phone: r.Phone})
	}
	return out
}

// EmailInputs converts submitted rows to entity inputs
func EmailInputs(rows []EmailRow) []entities.EmailInput {
	out := make([]entities.EmailInput, 0, len(rows))
	for _, r := range rows {
		out = append(out, entities.EmailInput{Label: r.Label, Email: r.Email})
	}
	return out
}
