package commands

import (
	"strings"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/valueobjects"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
	"github.com/Alexislovesarchitecture/contact-bubbles/pkg/utils"
)

// CreateRelationshipCommand links two distinct contacts
type CreateRelationshipCommand struct {
	RelationshipID string  `json:"relationshipId" validate:"required"`
	FromContactID  string  `json:"fromContactId"`
	ToContactID    string  `json:"toContactId"`
	Type           string  `json:"type" validate:"max=64"`
	Directed       bool    `json:"directed"`
	Strength       *int    `json:"strength"`
	Note           *string `json:"note"`
}

// Validate validates the CreateRelationshipCommand
func (c CreateRelationshipCommand) Validate() error {
	from := strings.TrimSpace(c.FromContactID)
	to := strings.TrimSpace(c.ToContactID)
	if from == "" || to == "" {
		return pkgerrors.NewValidationError("fromContactId and toContactId are required")
	}
	if from == to {
		return pkgerrors.NewValidationError("cannot link contact to itself")
	}
	if err := valueobjects.ValidateStrength(c.Strength); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return utils.ValidateStruct(c)
}

// DeleteRelationshipCommand removes a relationship
type DeleteRelationshipCommand struct {
	RelationshipID string `json:"relationshipId" validate:"required"`
}

// Validate validates the DeleteRelationshipCommand
func (c DeleteRelationshipCommand) Validate() error {
	return utils.ValidateStruct(c)
}
