package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/application/queries"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// nameResolver memoizes display names for the duration of one query
type nameResolver struct {
	contacts ports.ContactRepository
	names    map[string]string
}

func newNameResolver(contacts ports.ContactRepository) *nameResolver {
	return &nameResolver{contacts: contacts, names: make(map[string]string)}
}

// resolve returns both endpoint names; ok is false when either is gone
func (r *nameResolver) resolve(ctx context.Context, rel *entities.Relationship) (from, to string, ok bool, err error) {
	from, ok, err = r.lookup(ctx, rel.FromContactID)
	if err != nil || !ok {
		return "", "", false, err
	}
	to, ok, err = r.lookup(ctx, rel.ToContactID)
	if err != nil || !ok {
		return "", "", false, err
	}
	return from, to, true, nil
}

func (r *nameResolver) lookup(ctx context.Context, id string) (string, bool, error) {
	if name, ok := r.names[id]; ok {
		return name, true, nil
	}
	ref, found, err := r.contacts.FindRef(ctx, id)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve contact %s: %w", id, err)
	}
	if !found {
		return "", false, nil
	}
	r.names[id] = ref.DisplayName
	return ref.DisplayName, true, nil
}

// GetRelationshipHandler handles single relationship lookups
type GetRelationshipHandler struct {
	contacts      ports.ContactRepository
	relationships ports.RelationshipRepository
	logger        *zap.Logger
}

// NewGetRelationshipHandler creates a new get relationship handler
func NewGetRelationshipHandler(contacts ports.ContactRepository, relationships ports.RelationshipRepository, logger *zap.Logger) *GetRelationshipHandler {
	return &GetRelationshipHandler{contacts: contacts, relationships: relationships, logger: logger}
}

// Handle executes the get relationship query
func (h *GetRelationshipHandler) Handle(ctx context.Context, query queries.GetRelationshipQuery) (*queries.RelationshipView, error) {
	rel, err := h.relationships.GetByID(ctx, query.RelationshipID)
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship: %w", err)
	}

	from, to, ok, err := newNameResolver(h.contacts).resolve(ctx, rel)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.NewNotFoundError("contact")
	}

	view := queries.NewRelationshipView(rel, from, to)
	return &view, nil
}

// ListContactRelationshipsHandler lists the relationships of one contact
type ListContactRelationshipsHandler struct {
	contacts      ports.ContactRepository
	relationships ports.RelationshipRepository
	logger        *zap.Logger
}

// NewListContactRelationshipsHandler creates a new list handler
func NewListContactRelationshipsHandler(contacts ports.ContactRepository, relationships ports.RelationshipRepository, logger *zap.Logger) *ListContactRelationshipsHandler {
	return &ListContactRelationshipsHandler{contacts: contacts, relationships: relationships, logger: logger}
}

// Handle executes the list query. An unknown contact yields an empty list.
func (h *ListContactRelationshipsHandler) Handle(ctx context.Context, query queries.ListContactRelationshipsQuery) (*queries.ListContactRelationshipsResult, error) {
	rels, err := h.relationships.ListByContact(ctx, query.ContactID)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}

	resolver := newNameResolver(h.contacts)
	result := &queries.ListContactRelationshipsResult{
		Relationships: make([]queries.RelationshipView, 0, len(rels)),
	}
	for _, rel := range rels {
		from, to, ok, err := resolver.resolve(ctx, rel)
		if err != nil {
			return nil, err
		}
		if !ok {
			h.logger.Warn("Skipping relationship with missing endpoint",
				zap.String("relationshipID", rel.ID),
			)
			continue
		}
		result.Relationships = append(result.Relationships, queries.NewRelationshipView(rel, from, to))
	}
	return result, nil
}
