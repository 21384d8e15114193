package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands/bus"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
	querybus "github.com/Alexislovesarchitecture/contact-bubbles/application/queries/bus"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// RelationshipHandler handles relationship-related HTTP requests
type RelationshipHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *RelationshipHandler {
	return &RelationshipHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateRelationshipRequest is the body of POST /relationships. Strength may
// be null, "" or a number; directed accepts any truthy JSON value.
type CreateRelationshipRequest struct {
	FromContactID string      `json:"fromContactId"`
	ToContactID   string      `json:"toContactId"`
	Type          string      `json:"type"`
	Directed      flexBool    `json:"directed"`
	Strength      optionalInt `json:"strength"`
	Note          *string     `json:"note"`
}

// CreateRelationship handles POST /relationships
func (h *RelationshipHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var req CreateRelationshipRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	relationshipID := uuid.New().String()
	cmd := commands.CreateRelationshipCommand{
		RelationshipID: relationshipID,
		FromContactID:  req.FromContactID,
		ToContactID:    req.ToContactID,
		Type:           req.Type,
		Directed:       bool(req.Directed),
		Strength:       req.Strength.Value,
		Note:           req.Note,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	view, err := ask[*queries.RelationshipView](r.Context(), h.queryBus, queries.GetRelationshipQuery{RelationshipID: relationshipID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("Relationship created via API",
		zap.String("relationshipID", relationshipID),
		zap.String("type", view.Type),
	)
	respondJSON(w, http.StatusCreated, view)
}

// DeleteRelationship handles DELETE /relationships/{relationshipID}
func (h *RelationshipHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteRelationshipCommand{RelationshipID: chi.URLParam(r, "relationshipID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondOK(w)
}
