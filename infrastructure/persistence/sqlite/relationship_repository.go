package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/services"
	pkgerrors "github.com/Alexislovesarchitecture/contact-bubbles/pkg/errors"
)

const relationshipColumns = `id, from_contact_id, to_contact_id, type, directed, strength, note, created_at, updated_at`

// RelationshipRepository implements ports.RelationshipRepository on SQLite
type RelationshipRepository struct {
	db *DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

func (r *RelationshipRepository) Create(ctx context.Context, rel *entities.Relationship) error {
	var strength sql.NullInt64
	if rel.Strength != nil {
		strength = sql.NullInt64{Int64: int64(*rel.Strength), Valid: true}
	}

	_, err := r.db.db.ExecContext(ctx,
		`INSERT INTO relationships (`+relationshipColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, rel.FromContactID, rel.ToContactID, rel.Type, boolToInt(rel.Directed),
		strength, nullString(rel.Note), formatTime(rel.CreatedAt), formatTime(rel.UpdatedAt))
	if err != nil {
		return translateError("insert relationship", "relationship", err)
	}
	return nil
}

func (r *RelationshipRepository) GetByID(ctx context.Context, id string) (*entities.Relationship, error) {
	row := r.db.db.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM relationships WHERE id = ?`, id)
	rel, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NewNotFoundError("relationship")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get relationship", err)
	}
	return rel, nil
}

func (r *RelationshipRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return pkgerrors.NewDatabaseError("delete relationship", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return pkgerrors.NewNotFoundError("relationship")
	}
	return nil
}

func (r *RelationshipRepository) ListByContact(ctx context.Context, contactID string) ([]*entities.Relationship, error) {
	return r.query(ctx, "list relationships",
		`SELECT `+relationshipColumns+` FROM relationships
		 WHERE from_contact_id = ? OR to_contact_id = ?
		 ORDER BY updated_at DESC, rowid DESC`, contactID, contactID)
}

// ListIncident returns relationships in insertion (rowid) order so traversal
// output is stable across runs.
func (r *RelationshipRepository) ListIncident(ctx context.Context, contactID string, allowed services.TypeSet) ([]*entities.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE (from_contact_id = ? OR to_contact_id = ?)`
	args := []any{contactID, contactID}

	if len(allowed) > 0 {
		types := allowed.Values()
		query += ` AND type IN (` + strings.TrimSuffix(strings.Repeat("?,", len(types)), ",") + `)`
		for _, t := range types {
			args = append(args, t)
		}
	}
	query += ` ORDER BY rowid ASC`

	return r.query(ctx, "list incident relationships", query, args...)
}

func (r *RelationshipRepository) DeleteByContact(ctx context.Context, contactID string) (int, error) {
	res, err := r.db.db.ExecContext(ctx,
		`DELETE FROM relationships WHERE from_contact_id = ? OR to_contact_id = ?`, contactID, contactID)
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("delete contact relationships", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("delete contact relationships", err)
	}
	return int(n), nil
}

func (r *RelationshipRepository) List(ctx context.Context) ([]*entities.Relationship, error) {
	return r.query(ctx, "list all relationships",
		`SELECT `+relationshipColumns+` FROM relationships ORDER BY rowid ASC`)
}

func (r *RelationshipRepository) query(ctx context.Context, operation, query string, args ...any) ([]*entities.Relationship, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}
	defer rows.Close()

	result := []*entities.Relationship{}
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError(operation, err)
		}
		result = append(result, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError(operation, err)
	}
	return result, nil
}

func scanRelationship(row rowScanner) (*entities.Relationship, error) {
	var (
		rel              entities.Relationship
		directed         int
		strength         sql.NullInt64
		note             sql.NullString
		created, updated string
	)
	if err := row.Scan(&rel.ID, &rel.FromContactID, &rel.ToContactID, &rel.Type,
		&directed, &strength, &note, &created, &updated); err != nil {
		return nil, err
	}

	rel.Directed = directed != 0
	if strength.Valid {
		s := int(strength.Int64)
		rel.Strength = &s
	}
	rel.Note = stringPtr(note)

	var err error
	if rel.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	if rel.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}
	return &rel, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
