package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/commands"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/events"
	"github.com/Alexislovesarchitecture/contact-bubbles/infrastructure/persistence/memory"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}

func eventTypes(evts []events.DomainEvent) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.GetEventType())
	}
	return out
}

func hasEvents(types ...string) interface{} {
	return mock.MatchedBy(func(evts []events.DomainEvent) bool {
		return assert.ObjectsAreEqual(types, eventTypes(evts))
	})
}

type fixture struct {
	store     *memory.Store
	publisher *MockEventPublisher
	logger    *zap.Logger
}

func newFixture() *fixture {
	return &fixture{
		store:     memory.NewStore(),
		publisher: new(MockEventPublisher),
		logger:    zap.NewNop(),
	}
}

func (f *fixture) createContact(t *testing.T, id, name string) {
	t.Helper()
	f.publisher.On("PublishBatch", mock.Anything, hasEvents(events.TypeContactCreated)).Return(nil).Once()
	h := NewCreateContactHandler(f.store.Contacts(), f.publisher, f.logger)
	require.NoError(t, h.Handle(context.Background(), commands.CreateContactCommand{ContactID: id, DisplayName: name}))
}

func TestCreateContactHandler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeContactCreated)).Return(nil).Once()

	h := NewCreateContactHandler(f.store.Contacts(), f.publisher, f.logger)
	err := h.Handle(ctx, commands.CreateContactCommand{
		ContactID:   "c1",
		DisplayName: "  Ada Lovelace ",
		Phones:      []commands.PhoneRow{{Phone: "(555) 010-2000"}, {Phone: "  "}},
		Emails:      []commands.EmailRow{{Email: "ada@example.com"}},
	})
	require.NoError(t, err)

	stored, err := f.store.Contacts().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.DisplayName)
	require.Len(t, stored.Phones, 1)
	assert.Equal(t, "5550102000", stored.Phones[0].Normalized)
	assert.Len(t, stored.Emails, 1)
	assert.Empty(t, stored.GetUncommittedEvents())
	f.publisher.AssertExpectations(t)
}

func TestCreateContactHandler_PublishFailureIsNotReturned(t *testing.T) {
	f := newFixture()
	f.publisher.On("PublishBatch", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	h := NewCreateContactHandler(f.store.Contacts(), f.publisher, f.logger)
	err := h.Handle(context.Background(), commands.CreateContactCommand{ContactID: "c1", DisplayName: "Ada"})

	require.NoError(t, err)
	_, err = f.store.Contacts().GetByID(context.Background(), "c1")
	assert.NoError(t, err)
}

func TestCreateContactHandler_DuplicateID(t *testing.T) {
	f := newFixture()
	f.createContact(t, "c1", "Ada")

	h := NewCreateContactHandler(f.store.Contacts(), f.publisher, f.logger)
	err := h.Handle(context.Background(), commands.CreateContactCommand{ContactID: "c1", DisplayName: "Other"})

	assert.True(t, pkgerrors.IsConflict(err))
	f.publisher.AssertNumberOfCalls(t, "PublishBatch", 1)
}

func TestUpdateContactHandler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createContact(t, "c1", "Ada")
	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeContactUpdated)).Return(nil).Once()

	note := "mathematician"
	h := NewUpdateContactHandler(f.store.Contacts(), f.publisher, f.logger)
	err := h.Handle(ctx, commands.UpdateContactCommand{
		ContactID:   "c1",
		DisplayName: "Ada King",
		Note:        &note,
		Emails:      []commands.EmailRow{{Email: "ada@example.com"}},
	})
	require.NoError(t, err)

	stored, err := f.store.Contacts().GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada King", stored.DisplayName)
	assert.Equal(t, "mathematician", *stored.Note)
	assert.Len(t, stored.Emails, 1)
	f.publisher.AssertExpectations(t)
}

func TestUpdateContactHandler_UnknownContact(t *testing.T) {
	f := newFixture()
	h := NewUpdateContactHandler(f.store.Contacts(), f.publisher, f.logger)

	err := h.Handle(context.Background(), commands.UpdateContactCommand{ContactID: "missing", DisplayName: "X"})

	assert.True(t, pkgerrors.IsNotFound(err))
	f.publisher.AssertNotCalled(t, "PublishBatch", mock.Anything, mock.Anything)
}

func TestUpdateContactHandler_BlankName(t *testing.T) {
	f := newFixture()
	f.createContact(t, "c1", "Ada")
	h := NewUpdateContactHandler(f.store.Contacts(), f.publisher, f.logger)

	err := h.Handle(context.Background(), commands.UpdateContactCommand{ContactID: "missing", DisplayName: "  "})
	assert.True(t, pkgerrors.IsNotFound(err), "unknown contact wins over a blank name")

	err = h.Handle(context.Background(), commands.UpdateContactCommand{ContactID: "c1", DisplayName: "  "})
	assert.True(t, pkgerrors.IsValidation(err))

	stored, err := f.store.Contacts().GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.DisplayName)
	f.publisher.AssertNotCalled(t, "PublishBatch", mock.Anything, hasEvents(events.TypeContactUpdated))
}

func TestDeleteContactHandler_CascadesRelationships(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createContact(t, "a", "Ada")
	f.createContact(t, "b", "Bob")
	f.createContact(t, "c", "Cy")

	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeRelationshipCreated)).Return(nil).Twice()
	create := NewCreateRelationshipHandler(f.store.Contacts(), f.store.Relationships(), f.publisher, f.logger)
	require.NoError(t, create.Handle(ctx, commands.CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "b"}))
	require.NoError(t, create.Handle(ctx, commands.CreateRelationshipCommand{RelationshipID: "r2", FromContactID: "c", ToContactID: "a"}))

	var deleted events.ContactDeleted
	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeContactDeleted)).
		Run(func(args mock.Arguments) {
			deleted = args.Get(1).([]events.DomainEvent)[0].(events.ContactDeleted)
		}).
		Return(nil).Once()

	h := NewDeleteContactHandler(f.store.Contacts(), f.store.Relationships(), f.publisher, f.logger)
	require.NoError(t, h.Handle(ctx, commands.DeleteContactCommand{ContactID: "a"}))

	assert.Equal(t, 2, deleted.RemovedRelationships)
	_, err := f.store.Contacts().GetByID(ctx, "a")
	assert.True(t, pkgerrors.IsNotFound(err))
	rels, err := f.store.Relationships().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, rels)
	f.publisher.AssertExpectations(t)
}

func TestDeleteContactHandler_UnknownContact(t *testing.T) {
	f := newFixture()
	h := NewDeleteContactHandler(f.store.Contacts(), f.store.Relationships(), f.publisher, f.logger)

	err := h.Handle(context.Background(), commands.DeleteContactCommand{ContactID: "missing"})

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestCreateRelationshipHandler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createContact(t, "a", "Ada")
	f.createContact(t, "b", "Bob")
	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeRelationshipCreated)).Return(nil).Once()

	four := 4
	h := NewCreateRelationshipHandler(f.store.Contacts(), f.store.Relationships(), f.publisher, f.logger)
	err := h.Handle(ctx, commands.CreateRelationshipCommand{
		RelationshipID: "r1",
		FromContactID:  "a",
		ToContactID:    "b",
		Type:           "  ",
		Directed:       true,
		Strength:       &four,
	})
	require.NoError(t, err)

	rel, err := f.store.Relationships().GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "custom", rel.Type)
	assert.True(t, rel.Directed)
	assert.Equal(t, 4, *rel.Strength)
	f.publisher.AssertExpectations(t)
}

func TestCreateRelationshipHandler_Errors(t *testing.T) {
	f := newFixture()
	f.createContact(t, "a", "Ada")
	h := NewCreateRelationshipHandler(f.store.Contacts(), f.store.Relationships(), f.publisher, f.logger)
	ctx := context.Background()

	err := h.Handle(ctx, commands.CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "ghost"})
	assert.True(t, pkgerrors.IsNotFound(err))

	err = h.Handle(ctx, commands.CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "a"})
	assert.True(t, pkgerrors.IsValidation(err))

	six := 6
	err = h.Handle(ctx, commands.CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "b", Strength: &six})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestDeleteRelationshipHandler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.createContact(t, "a", "Ada")
	f.createContact(t, "b", "Bob")
	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeRelationshipCreated)).Return(nil).Once()
	create := NewCreateRelationshipHandler(f.store.Contacts(), f.store.Relationships(), f.publisher, f.logger)
	require.NoError(t, create.Handle(ctx, commands.CreateRelationshipCommand{RelationshipID: "r1", FromContactID: "a", ToContactID: "b"}))

	f.publisher.On("PublishBatch", ctx, hasEvents(events.TypeRelationshipDeleted)).Return(nil).Once()
	h := NewDeleteRelationshipHandler(f.store.Relationships(), f.publisher, f.logger)
	require.NoError(t, h.Handle(ctx, commands.DeleteRelationshipCommand{RelationshipID: "r1"}))

	_, err := f.store.Relationships().GetByID(ctx, "r1")
	assert.True(t, pkgerrors.IsNotFound(err))

	err = h.Handle(ctx, commands.DeleteRelationshipCommand{RelationshipID: "r1"})
	assert.True(t, pkgerrors.IsNotFound(err))
	f.publisher.AssertExpectations(t)
}
