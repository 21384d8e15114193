package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// Depth bounds for local graph expansion.
const (
	MinDepth = 1
	MaxDepth = 3
)

// GraphNode is a contact as it appears in a local graph.
type GraphNode struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// GraphEdge is a relationship as it appears in a local graph.
type GraphEdge struct {
	ID       string `json:"id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Type     string `json:"type"`
	Directed bool   `json:"directed"`
	Strength *int   `json:"strength"`
}

// LocalGraph is the node and edge set reachable from a seed contact.
// Nodes are in discovery order, seed first.
type LocalGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// TypeSet is a set of allowed relationship types. An empty set allows every type.
type TypeSet map[string]struct{}

// NewTypeSet builds a set from the given types, trimming each and dropping blanks.
func NewTypeSet(types ...string) TypeSet {
	set := make(TypeSet, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// ParseTypeSet parses a comma-separated list such as "friend, family".
func ParseTypeSet(param string) TypeSet {
	return NewTypeSet(strings.Split(param, ",")...)
}

// Allows reports whether relType passes the filter.
func (s TypeSet) Allows(relType string) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[relType]
	return ok
}

// Values returns the members in sorted order.
func (s TypeSet) Values() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// EntityLookup resolves a contact id to its graph node.
type EntityLookup interface {
	GetEntity(ctx context.Context, id string) (GraphNode, bool, error)
}

// RelationshipLookup returns the relationships having id at either endpoint,
// restricted to allowed types when the set is non-empty.
type RelationshipLookup interface {
	IncidentRelationships(ctx context.Context, id string, allowed TypeSet) ([]GraphEdge, error)
}

// ClampDepth forces depth into [MinDepth, MaxDepth].
func ClampDepth(depth int) int {
	if depth < MinDepth {
		return MinDepth
	}
	if depth > MaxDepth {
		return MaxDepth
	}
	return depth
}

// LocalGraphExpander computes the neighbourhood of a contact by breadth-first
// expansion over the relationship store.
type LocalGraphExpander struct {
	entities      EntityLookup
	relationships RelationshipLookup
}

// NewLocalGraphExpander creates a new expander
func NewLocalGraphExpander(entities EntityLookup, relationships RelationshipLookup) *LocalGraphExpander {
	return &LocalGraphExpander{
		entities:      entities,
		relationships: relationships,
	}
}

type frontierItem struct {
	id    string
	depth int
}

// Expand returns every contact within maxDepth hops of seedID together with
// every relationship traversed to reach them. Direction is ignored for
// reachability. Endpoints that no longer resolve are left out of the node list
// but their edges are still reported. The only not-found condition is an
// unknown seed. A cancelled or expired ctx aborts the traversal with ctx.Err()
// and no partial graph.
func (x *LocalGraphExpander) Expand(ctx context.Context, seedID string, maxDepth int, allowed TypeSet) (*LocalGraph, error) {
	maxDepth = ClampDepth(maxDepth)

	seed, found, err := x.entities.GetEntity(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seed contact: %w", err)
	}
	if !found {
		return nil, pkgerrors.NewNotFoundError("contact")
	}

	graph := &LocalGraph{
		Nodes: []GraphNode{seed},
		Edges: []GraphEdge{},
	}
	inGraph := map[string]bool{seed.ID: true}
	visited := map[string]bool{seed.ID: true}
	seenEdges := make(map[string]bool)

	queue := []frontierItem{{id: seed.ID, depth: 0}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		incident, err := x.relationships.IncidentRelationships(ctx, current.id, allowed)
		if err != nil {
			return nil, fmt.Errorf("failed to load relationships of %s: %w", current.id, err)
		}

		for _, edge := range incident {
			// Stores filter already; checked again so a lax store cannot leak types.
			if !allowed.Allows(edge.Type) {
				continue
			}
			if seenEdges[edge.ID] {
				continue
			}
			seenEdges[edge.ID] = true
			graph.Edges = append(graph.Edges, edge)

			for _, endpoint := range [2]string{edge.From, edge.To} {
				if !inGraph[endpoint] {
					node, ok, err := x.entities.GetEntity(ctx, endpoint)
					if err != nil {
						return nil, fmt.Errorf("failed to resolve contact %s: %w", endpoint, err)
					}
					if ok {
						inGraph[endpoint] = true
						graph.Nodes = append(graph.Nodes, node)
					}
				}
				if !visited[endpoint] {
					visited[endpoint] = true
					queue = append(queue, frontierItem{id: endpoint, depth: current.depth + 1})
				}
			}
		}
	}

	return graph, nil
}
