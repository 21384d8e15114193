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

// ContactHandler handles contact-related HTTP requests
type ContactHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ContactHandler {
	return &ContactHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// ContactRequest is the body of POST and PUT /contacts
type ContactRequest struct {
	DisplayName string              `json:"displayName"`
	Note        *string             `json:"note"`
	Phones      []commands.PhoneRow `json:"phones"`
	Emails      []commands.EmailRow `json:"emails"`
}

// SearchContacts handles GET /contacts?query=
func (h *ContactHandler) SearchContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		q = r.URL.Query().Get("q")
	}

	result, err := ask[*queries.SearchContactsResult](r.Context(), h.queryBus, queries.SearchContactsQuery{Query: q})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateContact handles POST /contacts
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	contactID := uuid.New().String()
	cmd := commands.CreateContactCommand{
		ContactID:   contactID,
		DisplayName: req.DisplayName,
		Note:        req.Note,
		Phones:      req.Phones,
		Emails:      req.Emails,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondContact(w, r, contactID, http.StatusCreated)
}

// GetContact handles GET /contacts/{contactID}
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	h.respondContact(w, r, chi.URLParam(r, "contactID"), http.StatusOK)
}

// UpdateContact handles PUT /contacts/{contactID}
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	contactID := chi.URLParam(r, "contactID")

	var req ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	cmd := commands.UpdateContactCommand{
		ContactID:   contactID,
		DisplayName: req.DisplayName,
		Note:        req.Note,
		Phones:      req.Phones,
		Emails:      req.Emails,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.respondContact(w, r, contactID, http.StatusOK)
}

// DeleteContact handles DELETE /contacts/{contactID}
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteContactCommand{ContactID: chi.URLParam(r, "contactID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondOK(w)
}

// ListRelationships handles GET /contacts/{contactID}/relationships
func (h *ContactHandler) ListRelationships(w http.ResponseWriter, r *http.Request) {
	query := queries.ListContactRelationshipsQuery{ContactID: chi.URLParam(r, "contactID")}
	result, err := ask[*queries.ListContactRelationshipsResult](r.Context(), h.queryBus, query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// respondContact reads the contact back so writes return the stored form
func (h *ContactHandler) respondContact(w http.ResponseWriter, r *http.Request, contactID string, status int) {
	view, err := ask[*queries.ContactView](r.Context(), h.queryBus, queries.GetContactQuery{ContactID: contactID})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, status, view)
}
