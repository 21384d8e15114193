package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

func TestCreateContactCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CreateContactCommand
		wantErr string
	}{
		{"valid", CreateContactCommand{ContactID: "c1", DisplayName: "Ada"}, ""},
		{"blank name", CreateContactCommand{ContactID: "c1", DisplayName: "   "}, "displayName is required"},
		{"missing id", CreateContactCommand{DisplayName: "Ada"}, "contactId is required"},
		{"long name", CreateContactCommand{ContactID: "c1", DisplayName: strings.Repeat("x", 201)}, "displayName must be at most 200 characters"},
		{"long phone", CreateContactCommand{ContactID: "c1", DisplayName: "Ada", Phones: []PhoneRow{{Phone: strings.Repeat("1", 65)}}}, "phone must be at most 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUpdateContactCommand_Validate(t *testing.T) {
	assert.NoError(t, UpdateContactCommand{ContactID: "c1", DisplayName: "Ada"}.Validate())
	assert.NoError(t, UpdateContactCommand{ContactID: "c1"}.Validate())
	assert.True(t, pkgerrors.IsValidation(UpdateContactCommand{DisplayName: "Ada"}.Validate()))
}

func TestCreateRelationshipCommand_Validate(t *testing.T) {
	zero, three := 0, 3
	tests := []struct {
		name    string
		cmd     CreateRelationshipCommand
		wantErr string
	}{
		{"valid", CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "b", Strength: &three}, ""},
		{"missing endpoint", CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: " "}, "fromContactId and toContactId are required"},
		{"self link", CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: " a "}, "cannot link contact to itself"},
		{"bad strength", CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "b", Strength: &zero}, "strength must be 1-5"},
		{"missing id", CreateRelationshipCommand{FromContactID: "a", ToContactID: "b"}, "relationshipId is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPhoneAndEmailInputs(t *testing.T) {
	label := "home"
	phones := PhoneInputs([]PhoneRow{{Label: &label, Phone: "555"}})
	emails := EmailInputs(nil)

	assert.Len(t, phones, 1)
	assert.Equal(t, "home", *phones[0].Label)
	assert.NotNil(t, emails)
	assert.Empty(t, emails)
}
