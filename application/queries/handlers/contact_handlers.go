package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
)

// GetContactHandler handles single contact lookups
type GetContactHandler struct {
	contacts ports.ContactRepository
	logger   *zap.Logger
}

// NewGetContactHandler creates a new get contact handler
func NewGetContactHandler(contacts ports.ContactRepository, logger *zap.Logger) *GetContactHandler {
	return &GetContactHandler{contacts: contacts, logger: logger}
}

// Handle executes the get contact query
func (h *GetContactHandler) Handle(ctx context.Context, query queries.GetContactQuery) (*queries.ContactView, error) {
	contact, err := h.contacts.GetByID(ctx, query.ContactID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return queries.NewContactView(contact), nil
}

// SearchContactsHandler handles contact search
type SearchContactsHandler struct {
	contacts ports.ContactRepository
	logger   *zap.Logger
}

// NewSearchContactsHandler creates a new search handler
func NewSearchContactsHandler(contacts ports.ContactRepository, logger *zap.Logger) *SearchContactsHandler {
	return &SearchContactsHandler{contacts: contacts, logger: logger}
}

// Handle executes the search contacts query
func (h *SearchContactsHandler) Handle(ctx context.Context, query queries.SearchContactsQuery) (*queries.SearchContactsResult, error) {
	found, err := h.contacts.Search(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to search contacts: %w", err)
	}

	result := &queries.SearchContactsResult{
		Contacts: make([]queries.ContactSummary, 0, len(found)),
	}
	for _, c := range found {
		result.Contacts = append(result.Contacts, queries.NewContactSummary(c))
	}

	h.logger.Debug("Contacts searched",
		zap.String("query", query.Query),
		zap.Int("results", len(result.Contacts)),
	)
	return result, nil
}
