// Package memory holds an in-process store used for tests, the CLI and
// single-node development runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

type nameKey struct {
	name string
	id   string
}

func nameKeyLess(a, b nameKey) bool {
	if a.name != b.name {
		return a.name < b.name
	}
	return a.id < b.id
}

func keyFor(c *entities.Contact) nameKey {
	return nameKey{name: strings.ToLower(c.DisplayName), id: c.ID}
}

type relRecord struct {
	seq uint64
	rel *entities.Relationship
}

func relRecordLess(a, b *relRecord) bool {
	return a.seq < b.seq
}

// Store keeps contacts and relationships in memory. Contacts are indexed by
// lower-cased display name, relationships by insertion sequence.
type Store struct {
	mu       sync.RWMutex
	contacts map[string]*entities.Contact
	byName   *btree.BTreeG[nameKey]
	rels     map[string]*relRecord
	bySeq    *btree.BTreeG[*relRecord]
	seq      uint64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		contacts: make(map[string]*entities.Contact),
		byName:   btree.NewBTreeG[nameKey](nameKeyLess),
		rels:     make(map[string]*relRecord),
		bySeq:    btree.NewBTreeG[*relRecord](relRecordLess),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Contacts returns the contact repository view of the store.
func (s *Store) Contacts() *ContactRepository {
	return &ContactRepository{store: s}
}

// Relationships returns the relationship repository view of the store.
func (s *Store) Relationships() *RelationshipRepository {
	return &RelationshipRepository{store: s}
}

// ContactRepository implements ports.ContactRepository in memory
type ContactRepository struct {
	store *Store
}

func (r *ContactRepository) Create(ctx context.Context, contact *entities.Contact) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.contacts[contact.ID]; exists {
		return pkgerrors.NewConflictError("contact already exists")
	}
	stored := contact.Clone()
	s.contacts[stored.ID] = stored
	s.byName.Set(keyFor(stored))
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *entities.Contact) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.contacts[contact.ID]
	if !ok {
		return pkgerrors.NewNotFoundError("contact")
	}
	s.byName.Delete(keyFor(existing))

	stored := contact.Clone()
	s.contacts[stored.ID] = stored
	s.byName.Set(keyFor(stored))
	return nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.contacts[id]
	if !ok {
		return pkgerrors.NewNotFoundError("contact")
	}
	s.byName.Delete(keyFor(existing))
	delete(s.contacts, id)
	s.deleteRelationshipsOf(id)
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*entities.Contact, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("contact")
	}
	return c.Clone(), nil
}

func (r *ContactRepository) FindRef(ctx context.Context, id string) (entities.ContactRef, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return entities.ContactRef{}, false, nil
	}
	return c.Ref(), true, nil
}

func (r *ContactRepository) Search(ctx context.Context, query string) ([]*entities.Contact, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*entities.Contact{}
	s.byName.Scan(func(key nameKey) bool {
		c := s.contacts[key.id]
		if c.Matches(query) {
			result = append(result, c.Basic())
		}
		return true
	})
	return result, nil
}

func (r *ContactRepository) List(ctx context.Context) ([]*entities.Contact, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entities.Contact, 0, len(s.contacts))
	s.byName.Scan(func(key nameKey) bool {
		result = append(result, s.contacts[key.id].Clone())
		return true
	})
	return result, nil
}

// RelationshipRepository implements ports.RelationshipRepository in memory
type RelationshipRepository struct {
	store *Store
}

func (r *RelationshipRepository) Create(ctx context.Context, rel *entities.Relationship) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rels[rel.ID]; exists {
		return pkgerrors.NewConflictError("relationship already exists")
	}
	if _, ok := s.contacts[rel.FromContactID]; !ok {
		return pkgerrors.NewNotFoundError("contact")
	}
	if _, ok := s.contacts[rel.ToContactID]; !ok {
		return pkgerrors.NewNotFoundError("contact")
	}

	s.seq++
	rec := &relRecord{seq: s.seq, rel: rel.Clone()}
	s.rels[rel.ID] = rec
	s.bySeq.Set(rec)
	return nil
}

func (r *RelationshipRepository) GetByID(ctx context.Context, id string) (*entities.Relationship, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rels[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}
	return rec.rel.Clone(), nil
}

func (r *RelationshipRepository) Delete(ctx context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rels[id]
	if !ok {
		return pkgerrors.NewNotFoundError("relationship")
	}
	s.bySeq.Delete(rec)
	delete(s.rels, id)
	return nil
}

func (r *RelationshipRepository) ListByContact(ctx context.Context, contactID string) ([]*entities.Relationship, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []*relRecord
	s.bySeq.Scan(func(rec *relRecord) bool {
		if rec.rel.Touches(contactID) {
			recs = append(recs, rec)
		}
		return true
	})

	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.rel.UpdatedAt.Equal(b.rel.UpdatedAt) {
			return a.rel.UpdatedAt.After(b.rel.UpdatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*entities.Relationship, 0, len(recs))
	for _, rec := range recs {
		result = append(result, rec.rel.Clone())
	}
	return result, nil
}

func (r *RelationshipRepository) ListIncident(ctx context.Context, contactID string, allowed services.TypeSet) ([]*entities.Relationship, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*entities.Relationship
	s.bySeq.Scan(func(rec *relRecord) bool {
		if rec.rel.Touches(contactID) && allowed.Allows(rec.rel.Type) {
			result = append(result, rec.rel.Clone())
		}
		return true
	})
	return result, nil
}

func (r *RelationshipRepository) DeleteByContact(ctx context.Context, contactID string) (int, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteRelationshipsOf(contactID), nil
}

func (r *RelationshipRepository) List(ctx context.Context) ([]*entities.Relationship, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*entities.Relationship, 0, len(s.rels))
	s.bySeq.Scan(func(rec *relRecord) bool {
		result = append(result, rec.rel.Clone())
		return true
	})
	return result, nil
}

// deleteRelationshipsOf must be called with the write lock held.
func (s *Store) deleteRelationshipsOf(contactID string) int {
	var doomed []*relRecord
	s.bySeq.Scan(func(rec *relRecord) bool {
		if rec.rel.Touches(contactID) {
			doomed = append(doomed, rec)
		}
		return true
	})
	for _, rec := range doomed {
		s.bySeq.Delete(rec)
		delete(s.rels, rec.rel.ID)
	}
	return len(doomed)
}
