package handlers

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// CreateRelationshipHandler handles relationship creation commands
type CreateRelationshipHandler struct {
	contacts      ports.ContactRepository
	relationships ports.RelationshipRepository
	publisher     ports.EventPublisher
	logger        *zap.Logger
}

// NewCreateRelationshipHandler creates a new create relationship handler
func NewCreateRelationshipHandler(
	contacts ports.ContactRepository,
	relationships ports.RelationshipRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *CreateRelationshipHandler {
	return &CreateRelationshipHandler{
		contacts:      contacts,
		relationships: relationships,
		publisher:     publisher,
		logger:        logger,
	}
}

// Handle executes the create relationship command
func (h *CreateRelationshipHandler) Handle(ctx context.Context, cmd commands.CreateRelationshipCommand) error {
	rel, err := entities.NewRelationship(
		cmd.RelationshipID,
		cmd.FromContactID,
		cmd.ToContactID,
		cmd.Type,
		cmd.Directed,
		cmd.Strength,
		cmd.Note,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	for _, id := range []string{rel.FromContactID, rel.ToContactID} {
		_, found, err := h.contacts.FindRef(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to resolve contact: %w", err)
		}
		if !found {
			return pkgerrors.NewNotFoundError("contact")
		}
	}

	if err := h.relationships.Create(ctx, rel); err != nil {
		return fmt.Errorf("failed to save relationship: %w", err)
	}

	publishEvents(ctx, h.publisher, h.logger, rel)

	h.logger.Info("Relationship created",
		zap.String("relationshipID", rel.ID),
		zap.String("from", rel.FromContactID),
		zap.String("to", rel.ToContactID),
		zap.String("type", rel.Type),
	)
	return nil
}

// DeleteRelationshipHandler handles relationship removal
type DeleteRelationshipHandler struct {
	relationships ports.RelationshipRepository
	publisher     ports.EventPublisher
	logger        *zap.Logger
}

// NewDeleteRelationshipHandler creates a new delete relationship handler
func NewDeleteRelationshipHandler(relationships ports.RelationshipRepository, publisher ports.EventPublisher, logger *zap.Logger) *DeleteRelationshipHandler {
	return &DeleteRelationshipHandler{relationships: relationships, publisher: publisher, logger: logger}
}

// Handle executes the delete relationship command
func (h *DeleteRelationshipHandler) Handle(ctx context.Context, cmd commands.DeleteRelationshipCommand) error {
	rel, err := h.relationships.GetByID(ctx, cmd.RelationshipID)
	if err != nil {
		return fmt.Errorf("failed to get relationship: %w", err)
	}

	if err := h.relationships.Delete(ctx, rel.ID); err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}

	rel.MarkDeleted(time.Now().UTC())
	publishEvents(ctx, h.publisher, h.logger, rel)

	h.logger.Info("Relationship deleted", zap.String("relationshipID", rel.ID))
	return nil
}
