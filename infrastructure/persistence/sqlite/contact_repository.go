package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/valueobjects"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

// ContactRepository implements ports.ContactRepository on SQLite
type ContactRepository struct {
	db *DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *entities.Contact) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO contacts (id, display_name, note, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			contact.ID, contact.DisplayName, nullString(contact.Note),
			formatTime(contact.CreatedAt), formatTime(contact.UpdatedAt))
		if err != nil {
			return translateError("insert contact", "contact", err)
		}
		return insertDetails(ctx, tx, contact)
	})
}

func (r *ContactRepository) Update(ctx context.Context, contact *entities.Contact) error {
	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE contacts SET display_name = ?, note = ?, updated_at = ? WHERE id = ?`,
			contact.DisplayName, nullString(contact.Note), formatTime(contact.UpdatedAt), contact.ID)
		if err != nil {
			return pkgerrors.NewDatabaseError("update contact", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return pkgerrors.NewNotFoundError("contact")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM contact_phones WHERE contact_id = ?`, contact.ID); err != nil {
			return pkgerrors.NewDatabaseError("delete phones", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM contact_emails WHERE contact_id = ?`, contact.ID); err != nil {
			return pkgerrors.NewDatabaseError("delete emails", err)
		}
		return insertDetails(ctx, tx, contact)
	})
}

func insertDetails(ctx context.Context, tx *sql.Tx, contact *entities.Contact) error {
	for _, p := range contact.Phones {
		normalized := p.Normalized
		if normalized == "" {
			normalized = valueobjects.NormalizePhone(p.Phone)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_phones (id, contact_id, label, phone, phone_normalized) VALUES (?, ?, ?, ?, ?)`,
			p.ID, contact.ID, nullString(p.Label), p.Phone, normalized); err != nil {
			return translateError("insert phone", "phone", err)
		}
	}
	for _, e := range contact.Emails {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO contact_emails (id, contact_id, label, email) VALUES (?, ?, ?, ?)`,
			e.ID, contact.ID, nullString(e.Label), e.Email); err != nil {
			return translateError("insert email", "email", err)
		}
	}
	return nil
}

// Delete removes the contact; phones, emails and relationships go with it
// through ON DELETE CASCADE.
func (r *ContactRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete contact", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("contact")
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*entities.Contact, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT id, display_name, note, created_at, updated_at FROM contacts WHERE id = ?`, id)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("contact")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get contact", err)
	}

	if err := r.loadDetails(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (r *ContactRepository) FindRef(ctx context.Context, id string) (entities.ContactRef, bool, error) {
	var ref entities.ContactRef
	err := r.db.db.QueryRowContext(ctx,
		`SELECT id, display_name FROM contacts WHERE id = ?`, id).Scan(&ref.ID, &ref.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return entities.ContactRef{}, false, nil
	}
	if err != nil {
		return entities.ContactRef{}, false, pkgerrors.NewDatabaseError("find contact", err)
	}
	return ref, true, nil
}

// Search matches the lower-cased query against names, emails and raw phones,
// and its digits against normalized phones.
func (r *ContactRepository) Search(ctx context.Context, query string) ([]*entities.Contact, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	digits := valueobjects.NormalizePhone(q)

	rows, err := r.db.db.QueryContext(ctx, `
		SELECT c.id, c.display_name, c.note, c.created_at, c.updated_at
		FROM contacts c
		WHERE (
		  ?1 = ''
		  OR instr(lower(c.display_name), ?1) > 0
		  OR EXISTS (SELECT 1 FROM contact_emails e WHERE e.contact_id = c.id AND instr(lower(e.email), ?1) > 0)
		  OR EXISTS (SELECT 1 FROM contact_phones p WHERE p.contact_id = c.id
		             AND (instr(lower(p.phone), ?1) > 0 OR (?2 <> '' AND instr(p.phone_normalized, ?2) > 0)))
		)
		ORDER BY c.display_name COLLATE NOCASE ASC, c.id ASC`, q, digits)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("search contacts", err)
	}
	defer rows.Close()

	result := []*entities.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("scan contact", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("search contacts", err)
	}
	return result, nil
}

func (r *ContactRepository) List(ctx context.Context) ([]*entities.Contact, error) {
	contacts, err := r.Search(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if err := r.loadDetails(ctx, c); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

func (r *ContactRepository) loadDetails(ctx context.Context, contact *entities.Contact) error {
	phoneRows, err := r.db.db.QueryContext(ctx,
		`SELECT id, label, phone, phone_normalized FROM contact_phones WHERE contact_id = ? ORDER BY phone ASC`, contact.ID)
	if err != nil {
		return pkgerrors.NewDatabaseError("load phones", err)
	}
	defer phoneRows.Close()

	contact.Phones = []entities.Phone{}
	for phoneRows.Next() {
		var p entities.Phone
		var label sql.NullString
		if err := phoneRows.Scan(&p.ID, &label, &p.Phone, &p.Normalized); err != nil {
			return pkgerrors.NewDatabaseError("scan phone", err)
		}
		p.Label = stringPtr(label)
		contact.Phones = append(contact.Phones, p)
	}
	if err := phoneRows.Err(); err != nil {
		return pkgerrors.NewDatabaseError("load phones", err)
	}
	phoneRows.Close()

	emailRows, err := r.db.db.QueryContext(ctx,
		`SELECT id, label, email FROM contact_emails WHERE contact_id = ? ORDER BY email ASC`, contact.ID)
	if err != nil {
		return pkgerrors.NewDatabaseError("load emails", err)
	}
	defer emailRows.Close()

	contact.Emails = []entities.Email{}
	for emailRows.Next() {
		var e entities.Email
		var label sql.NullString
		if err := emailRows.Scan(&e.ID, &label, &e.Email); err != nil {
			return pkgerrors.NewDatabaseError("scan email", err)
		}
		e.Label = stringPtr(label)
		contact.Emails = append(contact.Emails, e)
	}
	if err := emailRows.Err(); err != nil {
		return pkgerrors.NewDatabaseError("load emails", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*entities.Contact, error) {
	var (
		c                entities.Contact
		note             sql.NullString
		created, updated string
	)
	if err := row.Scan(&c.ID, &c.DisplayName, &note, &created, &updated); err != nil {
		return nil, err
	}
	c.Note = stringPtr(note)

	var err error
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if c.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &c, nil
}
