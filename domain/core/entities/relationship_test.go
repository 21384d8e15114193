package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

func TestNewRelationship(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	three := 3

	t.Run("defaults blank type to custom", func(t *testing.T) {
		r, err := NewRelationship("r1", " a ", "b", "  ", true, &three, nil, now)

		require.NoError(t, err)
		assert.Equal(t, "a", r.FromContactID)
		assert.Equal(t, DefaultRelationshipType, r.Type)
		assert.True(t, r.Directed)
		assert.Equal(t, 3, *r.Strength)
		assert.True(t, r.Touches("a"))
		assert.True(t, r.Touches("b"))
		assert.False(t, r.Touches("c"))
		require.Len(t, r.GetUncommittedEvents(), 1)
		assert.Equal(t, events.TypeRelationshipCreated, r.GetUncommittedEvents()[0].GetEventType())
	})

	invalid := []struct {
		name     string
		from, to string
		strength *int
		message  string
	}{
		{"missing endpoint", "", "b", nil, "fromContactId and toContactId are required"},
		{"self link", "a", "a", nil, "cannot link contact to itself"},
		{"strength too low", "a", "b", intPtr(0), "strength must be 1-5"},
		{"strength too high", "a", "b", intPtr(6), "strength must be 1-5"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRelationship("r1", tt.from, tt.to, "friend", false, tt.strength, nil, now)

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestRelationshipMarkDeleted(t *testing.T) {
	r, err := NewRelationship("r1", "a", "b", "friend", false, nil, nil, time.Now())
	require.NoError(t, err)
	r.MarkEventsAsCommitted()

	r.MarkDeleted(time.Now())

	evts := r.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeRelationshipDeleted, evts[0].GetEventType())
}

func intPtr(v int) *int { return &v }
