// Package export copies the contact graph into external graph databases.
package export

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/Alexislovesarchitecture/contact-bubbles/application/ports"
	"github.com/Alexislovesarchitecture/contact-bubbles/domain/core/entities"
)

const defaultBatchSize = 500

const (
	constraintCypher = "CREATE CONSTRAINT contact_id IF NOT EXISTS FOR (c:Contact) REQUIRE c.id IS UNIQUE"

	contactsCypher = `UNWIND $batch AS row
		MERGE (c:Contact {id: row.id})
		SET c.display_name = row.display_name, c.note = row.note,
		    c.phones = row.phones, c.emails = row.emails,
		    c.created_at = row.created_at, c.updated_at = row.updated_at`

	relationshipsCypher = `UNWIND $batch AS row
		MATCH (a:Contact {id: row.from}), (b:Contact {id: row.to})
		MERGE (a)-[r:RELATES_TO {id: row.id}]->(b)
		SET r.type = row.type, r.directed = row.directed, r.strength = row.strength,
		    r.note = row.note, r.created_at = row.created_at`
)

// CypherRunner executes one statement with parameters
type CypherRunner interface {
	Run(ctx context.Context, cypher string, params map[string]any) error
}

// DriverRunner runs statements through a Neo4j driver
type DriverRunner struct {
	driver neo4j.DriverWithContext
}

// NewDriverRunner connects to Neo4j and verifies connectivity
func NewDriverRunner(ctx context.Context, uri, user, password string) (*DriverRunner, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j: %w", err)
	}
	return &DriverRunner{driver: driver}, nil
}

func (r *DriverRunner) Run(ctx context.Context, cypher string, params map[string]any) error {
	_, err := neo4j.ExecuteQuery(ctx, r.driver, cypher, params, neo4j.EagerResultTransformer)
	return err
}

// Close releases the driver
func (r *DriverRunner) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

// Stats counts what an export wrote
type Stats struct {
	Contacts      int `json:"contacts"`
	Relationships int `json:"relationships"`
}

// Neo4jExporter upserts every contact as a :Contact node and every
// relationship as a :RELATES_TO edge using batched UNWIND statements.
type Neo4jExporter struct {
	runner        CypherRunner
	contacts      ports.ContactRepository
	relationships ports.RelationshipRepository
	logger        *zap.Logger
	batchSize     int
}

// NewNeo4jExporter creates a new exporter
func NewNeo4jExporter(runner CypherRunner, contacts ports.ContactRepository, relationships ports.RelationshipRepository, logger *zap.Logger) *Neo4jExporter {
	return &Neo4jExporter{
		runner:        runner,
		contacts:      contacts,
		relationships: relationships,
		logger:        logger,
		batchSize:     defaultBatchSize,
	}
}

// Export writes the whole store; re-running it is idempotent
func (e *Neo4jExporter) Export(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := e.runner.Run(ctx, constraintCypher, nil); err != nil {
		return stats, fmt.Errorf("failed to create constraint: %w", err)
	}

	contacts, err := e.contacts.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list contacts: %w", err)
	}
	if err := e.runBatches(ctx, contactsCypher, contactRows(contacts)); err != nil {
		return stats, fmt.Errorf("failed to export contacts: %w", err)
	}
	stats.Contacts = len(contacts)
	e.logger.Info("Exported contacts", zap.Int("count", stats.Contacts))

	rels, err := e.relationships.List(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to list relationships: %w", err)
	}
	if err := e.runBatches(ctx, relationshipsCypher, relationshipRows(rels)); err != nil {
		return stats, fmt.Errorf("failed to export relationships: %w", err)
	}
	stats.Relationships = len(rels)
	e.logger.Info("Exported relationships", zap.Int("count", stats.Relationships))

	return stats, nil
}

func (e *Neo4jExporter) runBatches(ctx context.Context, cypher string, rows []map[string]any) error {
	for start := 0; start < len(rows); start += e.batchSize {
		end := min(start+e.batchSize, len(rows))
		if err := e.runner.Run(ctx, cypher, map[string]any{"batch": rows[start:end]}); err != nil {
			return err
		}
	}
	return nil
}

func contactRows(contacts []*entities.Contact) []map[string]any {
	rows := make([]map[string]any, 0, len(contacts))
	for _, c := range contacts {
		phones := make([]string, 0, len(c.Phones))
		for _, p := range c.Phones {
			phones = append(phones, p.Phone)
		}
		emails := make([]string, 0, len(c.Emails))
		for _, e := range c.Emails {
			emails = append(emails, e.Email)
		}
		rows = append(rows, map[string]any{
			"id":           c.ID,
			"display_name": c.DisplayName,
			"note":         deref(c.Note),
			"phones":       phones,
			"emails":       emails,
			"created_at":   c.CreatedAt,
			"updated_at":   c.UpdatedAt,
		})
	}
	return rows
}

func relationshipRows(rels []*entities.Relationship) []map[string]any {
	rows := make([]map[string]any, 0, len(rels))
	for _, r := range rels {
		var strength any
		if r.Strength != nil {
			strength = int64(*r.Strength)
		}
		rows = append(rows, map[string]any{
			"id":         r.ID,
			"from":       r.FromContactID,
			"to":         r.ToContactID,
			"type":       r.Type,
			"directed":   r.Directed,
			"strength":   strength,
			"note":       deref(r.Note),
			"created_at": r.CreatedAt,
		})
	}
	return rows
}

// deref maps nil to a Cypher null
func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
