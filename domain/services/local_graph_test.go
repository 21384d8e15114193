package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// fakeStore keeps edges in insertion order and counts lookups.
type fakeStore struct {
	nodes       map[string]string
	edges       []GraphEdge
	entityErr   error
	incidentErr error
	calls       []string
}

func newFakeStore(names ...string) *fakeStore {
	s := &fakeStore{nodes: make(map[string]string)}
	for _, n := range names {
		s.nodes[n] = "Name " + n
	}
	return s
}

func (s *fakeStore) link(id, from, to, relType string) *fakeStore {
	s.edges = append(s.edges, GraphEdge{ID: id, From: from, To: to, Type: relType})
	return s
}

func (s *fakeStore) GetEntity(_ context.Context, id string) (GraphNode, bool, error) {
	if s.entityErr != nil {
		return GraphNode{}, false, s.entityErr
	}
	name, ok := s.nodes[id]
	if !ok {
		return GraphNode{}, false, nil
	}
	return GraphNode{ID: id, DisplayName: name}, true, nil
}

func (s *fakeStore) IncidentRelationships(_ context.Context, id string, allowed TypeSet) ([]GraphEdge, error) {
	s.calls = append(s.calls, id)
	if s.incidentErr != nil {
		return nil, s.incidentErr
	}
	var out []GraphEdge
	for _, e := range s.edges {
		if (e.From == id || e.To == id) && allowed.Allows(e.Type) {
			out = append(out, e)
		}
	}
	return out, nil
}

func nodeIDs(g *LocalGraph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgeIDs(g *LocalGraph) []string {
	ids := make([]string, len(g.Edges))
	for i, e := range g.Edges {
		ids[i] = e.ID
	}
	return ids
}

func expand(t *testing.T, s *fakeStore, seed string, depth int, types ...string) *LocalGraph {
	t.Helper()
	g, err := NewLocalGraphExpander(s, s).Expand(context.Background(), seed, depth, NewTypeSet(types...))
	require.NoError(t, err)
	return g
}

func TestExpand_ChainExample(t *testing.T) {
	// A -friend-> B -coworker-> C
	store := newFakeStore("A", "B", "C").
		link("e1", "A", "B", "friend").
		link("e2", "B", "C", "coworker")

	t.Run("depth 1 sees only the first hop", func(t *testing.T) {
		g := expand(t, store, "A", 1)

		assert.Equal(t, []string{"A", "B"}, nodeIDs(g))
		assert.Equal(t, []string{"e1"}, edgeIDs(g))
	})

	t.Run("depth 2 reaches C", func(t *testing.T) {
		g := expand(t, store, "A", 2)

		assert.Equal(t, []string{"A", "B", "C"}, nodeIDs(g))
		assert.Equal(t, []string{"e1", "e2"}, edgeIDs(g))
	})

	t.Run("friend filter stops at B", func(t *testing.T) {
		g := expand(t, store, "A", 2, "friend")

		assert.Equal(t, []string{"A", "B"}, nodeIDs(g))
		assert.Equal(t, []string{"e1"}, edgeIDs(g))
	})

	t.Run("direction is ignored", func(t *testing.T) {
		g := expand(t, store, "C", 2)

		assert.Equal(t, []string{"C", "B", "A"}, nodeIDs(g))
	})
}

func TestExpand_SeedAlwaysPresent(t *testing.T) {
	store := newFakeStore("lonely")

	g := expand(t, store, "lonely", 3)

	require.Len(t, g.Nodes, 1)
	assert.Equal(t, GraphNode{ID: "lonely", DisplayName: "Name lonely"}, g.Nodes[0])
	assert.NotNil(t, g.Edges)
	assert.Empty(t, g.Edges)
}

func TestExpand_UnknownSeed(t *testing.T) {
	store := newFakeStore("A")

	_, err := NewLocalGraphExpander(store, store).Expand(context.Background(), "missing", 1, nil)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestExpand_ParallelEdgesKept(t *testing.T) {
	store := newFakeStore("A", "B").
		link("e1", "A", "B", "friend").
		link("e2", "B", "A", "coworker")

	g := expand(t, store, "A", 3)

	assert.Equal(t, []string{"A", "B"}, nodeIDs(g))
	assert.Equal(t, []string{"e1", "e2"}, edgeIDs(g))
}

func TestExpand_NoDuplicateEdgesInCycle(t *testing.T) {
	store := newFakeStore("A", "B", "C").
		link("ab", "A", "B", "friend").
		link("bc", "B", "C", "friend").
		link("ca", "C", "A", "friend")

	g := expand(t, store, "A", 3)

	assert.ElementsMatch(t, []string{"ab", "bc", "ca"}, edgeIDs(g))
	assert.Len(t, g.Edges, 3)
	assert.Equal(t, []string{"A", "B", "C"}, nodeIDs(g))
}

func TestExpand_SelfLoopYieldsSingleNode(t *testing.T) {
	store := newFakeStore("A").link("loop", "A", "A", "custom")

	g := expand(t, store, "A", 2)

	assert.Equal(t, []string{"A"}, nodeIDs(g))
	assert.Equal(t, []string{"loop"}, edgeIDs(g))
}

func TestExpand_DanglingEndpointSkipped(t *testing.T) {
	store := newFakeStore("A").link("e1", "A", "ghost", "friend")

	g := expand(t, store, "A", 2)

	assert.Equal(t, []string{"A"}, nodeIDs(g))
	assert.Equal(t, []string{"e1"}, edgeIDs(g))
}

func TestExpand_EmptyFilterMeansNoFilter(t *testing.T) {
	store := newFakeStore("A", "B", "C").
		link("e1", "A", "B", "friend").
		link("e2", "A", "C", "family")

	unfiltered := expand(t, store, "A", 1)
	blanks := expand(t, store, "A", 1, " ", "")

	assert.Equal(t, edgeIDs(unfiltered), edgeIDs(blanks))
	assert.Len(t, unfiltered.Edges, 2)
}

func TestExpand_FilterReturnsOnlyAllowedTypes(t *testing.T) {
	store := newFakeStore("A", "B", "C", "D").
		link("e1", "A", "B", "friend").
		link("e2", "A", "C", "family").
		link("e3", "B", "D", "friend").
		link("e4", "C", "D", "coworker")

	g := expand(t, store, "A", 3, "friend")

	for _, e := range g.Edges {
		assert.Equal(t, "friend", e.Type)
	}
	assert.Equal(t, []string{"A", "B", "D"}, nodeIDs(g))
	assert.Equal(t, []string{"e1", "e3"}, edgeIDs(g))
}

func TestExpand_DepthOneNodesAreAdjacent(t *testing.T) {
	store := newFakeStore("A", "B", "C", "D").
		link("e1", "A", "B", "friend").
		link("e2", "C", "A", "family").
		link("e3", "B", "D", "friend")

	g := expand(t, store, "A", 1)

	for _, id := range nodeIDs(g)[1:] {
		adjacent := false
		for _, e := range g.Edges {
			if (e.From == "A" && e.To == id) || (e.To == "A" && e.From == id) {
				adjacent = true
			}
		}
		assert.True(t, adjacent, "node %s is not adjacent to the seed", id)
	}
	assert.NotContains(t, nodeIDs(g), "D")
}

func TestExpand_MonotonicInDepth(t *testing.T) {
	store := newFakeStore("A", "B", "C", "D", "E").
		link("e1", "A", "B", "friend").
		link("e2", "B", "C", "friend").
		link("e3", "C", "D", "friend").
		link("e4", "D", "E", "friend")

	var previous *LocalGraph
	for depth := MinDepth; depth <= MaxDepth; depth++ {
		g := expand(t, store, "A", depth)
		if previous != nil {
			assert.Subset(t, nodeIDs(g), nodeIDs(previous))
			assert.Subset(t, edgeIDs(g), edgeIDs(previous))
		}
		previous = g
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, nodeIDs(previous))
}

func TestExpand_DepthIsClamped(t *testing.T) {
	store := newFakeStore("A", "B", "C", "D", "E").
		link("e1", "A", "B", "friend").
		link("e2", "B", "C", "friend").
		link("e3", "C", "D", "friend").
		link("e4", "D", "E", "friend")

	assert.Equal(t, expand(t, store, "A", 1), expand(t, store, "A", 0))
	assert.Equal(t, expand(t, store, "A", 1), expand(t, store, "A", -4))
	assert.Equal(t, expand(t, store, "A", 3), expand(t, store, "A", 10))
}

func TestExpand_LeavesAreNotExpanded(t *testing.T) {
	store := newFakeStore("A", "B", "C").
		link("e1", "A", "B", "friend").
		link("e2", "B", "C", "friend")

	expand(t, store, "A", 1)

	assert.Equal(t, []string{"A"}, store.calls)
}

func TestExpand_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")

	t.Run("relationship lookup", func(t *testing.T) {
		store := newFakeStore("A")
		store.incidentErr = boom

		_, err := NewLocalGraphExpander(store, store).Expand(context.Background(), "A", 1, nil)

		require.ErrorIs(t, err, boom)
		assert.False(t, pkgerrors.IsNotFound(err))
	})

	t.Run("entity lookup", func(t *testing.T) {
		store := newFakeStore("A")
		store.entityErr = boom

		_, err := NewLocalGraphExpander(store, store).Expand(context.Background(), "A", 1, nil)

		require.ErrorIs(t, err, boom)
	})
}

func TestExpand_CancelledContext(t *testing.T) {
	store := newFakeStore("A", "B").link("e1", "A", "B", "friend")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalGraphExpander(store, store).Expand(ctx, "A", 1, nil)

	require.ErrorIs(t, err, context.Canceled)
}

func TestTypeSet(t *testing.T) {
	set := ParseTypeSet(" friend, ,family,,friend ")

	assert.Equal(t, []string{"family", "friend"}, set.Values())
	assert.True(t, set.Allows("friend"))
	assert.False(t, set.Allows("coworker"))
	assert.True(t, ParseTypeSet("").Allows("anything"))
	assert.True(t, TypeSet(nil).Allows("anything"))
}

func TestClampDepth(t *testing.T) {
	assert.Equal(t, 1, ClampDepth(-1))
	assert.Equal(t, 1, ClampDepth(0))
	assert.Equal(t, 2, ClampDepth(2))
	assert.Equal(t, 3, ClampDepth(99))
}
