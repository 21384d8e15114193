package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "contacts.sqlite"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	require.NoError(t, db.Migrate(context.Background()), "migrate must be idempotent")
	return db
}

func label(s string) *string { return &s }

func TestContactRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewContactRepository(openTestDB(t))

	contact, err := entities.NewContact("c1", "Ada Lovelace", label("analyst"),
		[]entities.PhoneInput{{Phone: "555-0199", Label: label("work")}, {Phone: "+44 20 7946 0000"}},
		[]entities.EmailInput{{Email: "ada@example.com"}},
		base)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, contact))

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", got.DisplayName)
	assert.Equal(t, "analyst", *got.Note)
	assert.True(t, got.CreatedAt.Equal(base))
	require.Len(t, got.Phones, 2)
	assert.Equal(t, "+44 20 7946 0000", got.Phones[0].Phone)
	assert.Nil(t, got.Phones[0].Label)
	assert.Equal(t, "5550199", got.Phones[1].Normalized)
	assert.Equal(t, "work", *got.Phones[1].Label)
	require.Len(t, got.Emails, 1)

	t.Run("duplicate id conflicts", func(t *testing.T) {
		dup, err := entities.NewContact("c1", "Other", nil, nil, nil, base)
		require.NoError(t, err)
		assert.True(t, pkgerrors.IsConflict(repo.Create(ctx, dup)))
	})

	t.Run("update replaces phone and email sets", func(t *testing.T) {
		require.NoError(t, got.Update("Ada King", nil, []entities.PhoneInput{{Phone: "123"}}, nil, base.Add(time.Hour)))
		require.NoError(t, repo.Update(ctx, got))

		again, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, "Ada King", again.DisplayName)
		assert.Nil(t, again.Note)
		require.Len(t, again.Phones, 1)
		assert.Equal(t, "123", again.Phones[0].Phone)
		assert.Empty(t, again.Emails)
		assert.True(t, again.UpdatedAt.Equal(base.Add(time.Hour)))
	})

	t.Run("unknown contact", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "missing")
		assert.True(t, pkgerrors.IsNotFound(err))

		ghost, err := entities.NewContact("missing", "Ghost", nil, nil, nil, base)
		require.NoError(t, err)
		assert.True(t, pkgerrors.IsNotFound(repo.Update(ctx, ghost)))
		assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, "missing")))

		_, found, err := repo.FindRef(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestContactRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := NewContactRepository(openTestDB(t))

	seed := []struct {
		id, name, phone, email string
	}{
		{"1", "bob", "(555) 010-2000", "bob@work.example"},
		{"2", "Alice", "", "alice@home.example"},
		{"3", "Carol", "07700 900123", ""},
	}
	for _, s := range seed {
		c, err := entities.NewContact(s.id, s.name, nil,
			[]entities.PhoneInput{{Phone: s.phone}}, []entities.EmailInput{{Email: s.email}}, base)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, c))
	}

	ids := func(query string) []string {
		found, err := repo.Search(ctx, query)
		require.NoError(t, err)
		out := []string{}
		for _, c := range found {
			assert.Empty(t, c.Phones)
			out = append(out, c.ID)
		}
		return out
	}

	assert.Equal(t, []string{"2", "1", "3"}, ids(""))
	assert.Equal(t, []string{"2"}, ids("ALICE"))
	assert.Equal(t, []string{"1"}, ids("work.example"))
	assert.Equal(t, []string{"1"}, ids("555-010"))
	assert.Equal(t, []string{"3"}, ids("900123"))
	assert.Equal(t, []string{"1"}, ids("(555)"))
	assert.Empty(t, ids("zzz"))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Len(t, all[1].Phones, 1)
}

func TestRelationshipRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	contacts := NewContactRepository(db)
	rels := NewRelationshipRepository(db)

	for _, id := range []string{"a", "b", "c"} {
		c, err := entities.NewContact(id, "name "+id, nil, nil, nil, base)
		require.NoError(t, err)
		require.NoError(t, contacts.Create(ctx, c))
	}

	four := 4
	create := func(id, from, to, relType string, at time.Time, strength *int) {
		rel, err := entities.NewRelationship(id, from, to, relType, true, strength, nil, at)
		require.NoError(t, err)
		require.NoError(t, rels.Create(ctx, rel))
	}
	create("r1", "a", "b", "friend", base, &four)
	create("r2", "c", "a", "family", base.Add(2*time.Hour), nil)
	create("r3", "b", "c", "friend", base.Add(time.Hour), nil)

	t.Run("round trip", func(t *testing.T) {
		got, err := rels.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.True(t, got.Directed)
		require.NotNil(t, got.Strength)
		assert.Equal(t, 4, *got.Strength)
		assert.Equal(t, "friend", got.Type)
	})

	t.Run("unknown endpoint is not found", func(t *testing.T) {
		rel, err := entities.NewRelationship("r9", "a", "ghost", "friend", false, nil, nil, base)
		require.NoError(t, err)
		assert.True(t, pkgerrors.IsNotFound(rels.Create(ctx, rel)))
	})

	t.Run("list by contact newest first", func(t *testing.T) {
		list, err := rels.ListByContact(ctx, "a")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "r2", list[0].ID)
		assert.Equal(t, "r1", list[1].ID)
	})

	t.Run("incident keeps insertion order and filters", func(t *testing.T) {
		all, err := rels.ListIncident(ctx, "c", nil)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "r2", all[0].ID)
		assert.Equal(t, "r3", all[1].ID)

		friends, err := rels.ListIncident(ctx, "c", services.NewTypeSet("friend", "coworker"))
		require.NoError(t, err)
		require.Len(t, friends, 1)
		assert.Equal(t, "r3", friends[0].ID)
	})

	t.Run("deleting a contact cascades", func(t *testing.T) {
		require.NoError(t, contacts.Delete(ctx, "c"))

		all, err := rels.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "r1", all[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		n, err := rels.DeleteByContact(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.True(t, pkgerrors.IsNotFound(rels.Delete(ctx, "r1")))
	})
}
