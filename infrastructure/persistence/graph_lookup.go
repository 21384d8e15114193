package persistence

import (
	"context"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
)

// GraphLookup adapts the contact and relationship repositories to the
// lookups consumed by the local graph expander.
type GraphLookup struct {
	contacts      ports.ContactRepository
	relationships ports.RelationshipRepository
}

// NewGraphLookup creates a new graph lookup bridge
func NewGraphLookup(contacts ports.ContactRepository, relationships ports.RelationshipRepository) *GraphLookup {
	return &GraphLookup{
		contacts:      contacts,
		relationships: relationships,
	}
}

// GetEntity implements services.EntityLookup
func (g *GraphLookup) GetEntity(ctx context.Context, id string) (services.GraphNode, bool, error) {
	ref, found, err := g.contacts.FindRef(ctx, id)
	if err != nil || !found {
		return services.GraphNode{}, false, err
	}
	return services.GraphNode{ID: ref.ID, DisplayName: ref.DisplayName}, true, nil
}

// IncidentRelationships implements services.RelationshipLookup
func (g *GraphLookup) IncidentRelationships(ctx context.Context, id string, allowed services.TypeSet) ([]services.GraphEdge, error) {
	rels, err := g.relationships.ListIncident(ctx, id, allowed)
	if err != nil {
		return nil, err
	}
	edges := make([]services.GraphEdge, 0, len(rels))
	for _, r := range rels {
		edges = append(edges, ToGraphEdge(r))
	}
	return edges, nil
}

// ToGraphEdge converts a stored relationship to its graph wire shape.
func ToGraphEdge(r *entities.Relationship) services.GraphEdge {
	return services.GraphEdge{
		ID:       r.ID,
		From:     r.FromContactID,
		To:       r.ToContactID,
		Type:     r.Type,
		Directed: r.Directed,
		Strength: r.Strength,
	}
}
