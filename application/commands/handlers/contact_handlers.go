package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
)

// CreateContactHandler handles contact creation commands
type CreateContactHandler struct {
	contacts  ports.ContactRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewCreateContactHandler creates a new create contact handler
func NewCreateContactHandler(contacts ports.ContactRepository, publisher ports.EventPublisher, logger *zap.Logger) *CreateContactHandler {
	return &CreateContactHandler{contacts: contacts, publisher: publisher, logger: logger}
}

// Handle executes the create contact command
func (h *CreateContactHandler) Handle(ctx context.Context, cmd commands.CreateContactCommand) error {
	contact, err := entities.NewContact(
		cmd.ContactID,
		cmd.DisplayName,
		cmd.Note,
		commands.PhoneInputs(cmd.Phones),
		commands.EmailInputs(cmd.Emails),
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	if err := h.contacts.Create(ctx, contact); err != nil {
		return fmt.Errorf("failed to save contact: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, contact)

	h.logger.Info("Contact created",
		zap.String("contactID", contact.ID),
		zap.Int("phones", len(contact.Phones)),
		zap.Int("emails", len(contact.Emails)),
	)
	return nil
}

// UpdateContactHandler handles full contact replacement
type UpdateContactHandler struct {
	contacts  ports.ContactRepository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewUpdateContactHandler creates a new update contact handler
func NewUpdateContactHandler(contacts ports.ContactRepository, publisher ports.EventPublisher, logger *zap.Logger) *UpdateContactHandler {
	return &UpdateContactHandler{contacts: contacts, publisher: publisher, logger: logger}
}

// Handle executes the update contact command
func (h *UpdateContactHandler) Handle(ctx context.Context, cmd commands.UpdateContactCommand) error {
	contact, err := h.contacts.GetByID(ctx, cmd.ContactID)
	if err != nil {
		return fmt.Errorf("failed to get contact: %w", err)
	}

	if err := contact.Update(
		cmd.DisplayName,
		cmd.Note,
		commands.PhoneInputs(cmd.Phones),
		commands.EmailInputs(cmd.Emails),
		time.Now().UTC(),
	); err != nil {
		return err
	}

	if err := h.contacts.Update(ctx, contact); err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, contact)

	h.logger.Info("Contact updated", zap.String("contactID", contact.ID))
	return nil
}

// DeleteContactHandler removes a contact together with its relationships
type DeleteContactHandler struct {
	contacts      ports.ContactRepository
	relationships ports.RelationshipRepository
	publisher     ports.EventPublisher
	logger        *zap.Logger
}

// NewDeleteContactHandler creates a new delete contact handler
func NewDeleteContactHandler(
	contacts ports.ContactRepository,
	relationships ports.RelationshipRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteContactHandler {
	return &DeleteContactHandler{
		contacts:      contacts,
		relationships: relationships,
		publisher:     publisher,
		logger:        logger,
	}
}

// Handle executes the delete contact command
func (h *DeleteContactHandler) Handle(ctx context.Context, cmd commands.DeleteContactCommand) error {
	contact, err := h.contacts.GetByID(ctx, cmd.ContactID)
	if err != nil {
		return fmt.Errorf("failed to get contact: %w", err)
	}

	removed, err := h.relationships.DeleteByContact(ctx, contact.ID)
	if err != nil {
		return fmt.Errorf("failed to delete relationships: %w", err)
	}

	if err := h.contacts.Delete(ctx, contact.ID); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	contact.MarkDeleted(removed, time.Now().UTC())
	publishEvents(ctx, h.publisher, h.logger, contact)

	h.logger.Info("Contact deleted",
		zap.String("contactID", contact.ID),
		zap.Int("relationshipsRemoved", removed),
	)
	return nil
}
