package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence/memory"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	store := memory.NewStore()

	for _, id := range []string{"a", "b", "c"} {
		c, err := entities.NewContact(id, "Contact "+id, nil, nil, nil, now)
		require.NoError(t, err)
		require.NoError(t, store.Contacts().Create(ctx, c))
	}
	two := 2
	r1, err := entities.NewRelationship("r1", "a", "b", "friend", true, &two, nil, now)
	require.NoError(t, err)
	require.NoError(t, store.Relationships().Create(ctx, r1))
	r2, err := entities.NewRelationship("r2", "b", "c", "coworker", false, nil, nil, now)
	require.NoError(t, err)
	require.NoError(t, store.Relationships().Create(ctx, r2))
	return store
}

func TestGraphLookup_DrivesExpander(t *testing.T) {
	store := seedStore(t)
	lookup := NewGraphLookup(store.Contacts(), store.Relationships())
	expander := services.NewLocalGraphExpander(lookup, lookup)

	g, err := expander.Expand(context.Background(), "a", 2, nil)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 3)
	assert.Equal(t, services.GraphNode{ID: "a", DisplayName: "Contact a"}, g.Nodes[0])
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "r1", g.Edges[0].ID)
	assert.True(t, g.Edges[0].Directed)
	require.NotNil(t, g.Edges[0].Strength)
	assert.Equal(t, 2, *g.Edges[0].Strength)
	assert.Nil(t, g.Edges[1].Strength)

	_, found, err := lookup.GetEntity(context.Background(), "zzz")
	require.NoError(t, err)
	assert.False(t, found)
}

type failingContacts struct {
	*memory.ContactRepository
	err error
}

func (f *failingContacts) GetByID(ctx context.Context, id string) (*entities.Contact, error) {
	return nil, f.err
}

func TestCircuitBreaker_TripsOnInfrastructureErrors(t *testing.T) {
	store := seedStore(t)
	inner := &failingContacts{
		ContactRepository: store.Contacts(),
		err:               pkgerrors.NewDatabaseError("get contact", errors.New("connection reset")),
	}
	cfg := DefaultCircuitBreakerConfig("contacts")
	cfg.MinRequests = 2
	cfg.FailureThreshold = 0.5
	repo := NewCircuitBreakerContactRepository(inner, NewCircuitBreaker(cfg, zap.NewNop()))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := repo.GetByID(ctx, "a")
		require.Error(t, err)
		assert.False(t, pkgerrors.IsUnavailable(err))
	}

	_, err := repo.GetByID(ctx, "a")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnavailable(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_IgnoresDomainErrors(t *testing.T) {
	store := seedStore(t)
	cfg := DefaultCircuitBreakerConfig("contacts")
	cfg.MinRequests = 1
	cfg.FailureThreshold = 0.1
	repo := NewCircuitBreakerContactRepository(store.Contacts(), NewCircuitBreaker(cfg, zap.NewNop()))
	rels := NewCircuitBreakerRelationshipRepository(store.Relationships(), NewCircuitBreaker(cfg, zap.NewNop()))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.GetByID(ctx, "missing")
		assert.True(t, pkgerrors.IsNotFound(err))
	}

	c, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Contact a", c.DisplayName)

	ref, found, err := repo.FindRef(ctx, "b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Contact b", ref.DisplayName)

	incident, err := rels.ListIncident(ctx, "b", services.NewTypeSet("coworker"))
	require.NoError(t, err)
	require.Len(t, incident, 1)
	assert.Equal(t, "r2", incident[0].ID)
}
