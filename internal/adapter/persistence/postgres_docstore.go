package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cultivo/cultivo/internal/ports"
)

// PostgresDocumentStore implements DocumentStore on a single JSONB table.
// Every collection shares the documents table, keyed by (collection, id).
// Postgres serves any filter and ordering combination, so this store never
// returns ErrIndexUnavailable.
type PostgresDocumentStore struct {
	db *sql.DB
}

// NewPostgresDocumentStore creates a Postgres-backed document store.
func NewPostgresDocumentStore(db *sql.DB) *PostgresDocumentStore {
	return &PostgresDocumentStore{db: db}
}

// Insert stores the document under a new UUID and returns it.
func (s *PostgresDocumentStore) Insert(ctx context.Context, collection string, doc ports.Document) (string, error) {
	id := uuid.NewString()
	stored := copyDocument(doc)
	stored["id"] = id

	data, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, data,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

// Get retrieves a document by id.
func (s *PostgresDocumentStore) Get(ctx context.Context, collection, id string) (ports.Document, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ports.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return decodeDocument(data, id)
}

// Update replaces the stored document, keeping its id.
func (s *PostgresDocumentStore) Update(ctx context.Context, collection, id string, doc ports.Document) error {
	stored := copyDocument(doc)
	stored["id"] = id

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = $3, updated_at = NOW() WHERE collection = $1 AND id = $2`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ports.ErrDocumentNotFound
	}
	return nil
}

// Delete removes a document by id.
func (s *PostgresDocumentStore) Delete(ctx context.Context, collection, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return ports.ErrDocumentNotFound
	}
	return nil
}

// Query evaluates equality filters against top-level JSON fields. Ordered
// fields in this system are always timestamps, so the order-by expression
// casts the text value to timestamptz.
func (s *PostgresDocumentStore) Query(ctx context.Context, collection string, spec ports.QuerySpec) ([]ports.Document, error) {
	query := `SELECT id, data FROM documents WHERE collection = $1`
	args := []interface{}{collection}

	for _, f := range spec.Filters {
		query += fmt.Sprintf(" AND data->>$%d = $%d", len(args)+1, len(args)+2)
		args = append(args, f.Field, filterText(f.Value))
	}

	if spec.OrderBy != "" {
		query += fmt.Sprintf(" ORDER BY (data->>$%d)::timestamptz", len(args)+1)
		args = append(args, spec.OrderBy)
		if spec.Descending {
			query += " DESC"
		}
	}

	if spec.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, spec.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var results []ports.Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeDocument(data, id)
		if err != nil {
			return nil, err
		}
		results = append(results, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return results, nil
}

func decodeDocument(data []byte, id string) (ports.Document, error) {
	var doc ports.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	doc["id"] = id
	return doc, nil
}

// filterText renders a filter value the way JSONB ->> renders the stored one.
func filterText(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}
