package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DocStore is the local backend variant: a single sqlite file holding whole
// JSON documents keyed by (collection, id). Writes are last-write-wins
// overwrites with no merge, mirroring the full-document store this variant
// replaces.
type DocStore struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the document store file
func Open(path string, log zerolog.Logger) (*DocStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	// sqlite handles one writer at a time
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			doc        TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create document table: %w", err)
	}

	s := &DocStore{
		db:  db,
		log: log.With().Str("component", "docstore").Logger(),
	}
	s.log.Info().Str("path", path).Msg("Document store opened")
	return s, nil
}

// Close releases the underlying database handle
func (s *DocStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the store file is reachable
func (s *DocStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// put marshals and overwrites one document, last write wins
func (s *DocStore) put(ctx context.Context, collection, id string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, doc, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			doc = excluded.doc,
			updated_at = excluded.updated_at
	`, collection, id, string(doc), time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

// get unmarshals one document into out; found is false when absent
func (s *DocStore) get(ctx context.Context, collection, id string, out any) (bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		"SELECT doc FROM documents WHERE collection = ? AND id = ?", collection, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(doc), out)
}

// each walks every document of a collection in id order
func (s *DocStore) each(ctx context.Context, collection string, fn func(doc []byte) error) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc FROM documents WHERE collection = ? ORDER BY id", collection)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return err
		}
		if err := fn([]byte(doc)); err != nil {
			return err
		}
	}
	return rows.Err()
}

// delete removes one document; deleting an absent id is not an error
func (s *DocStore) delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", collection, id)
	return err
}

// clear drops a whole collection; roster import replaces, never merges
func (s *DocStore) clear(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", collection)
	return err
}

// count returns the number of documents in a collection
func (s *DocStore) count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&n)
	return n, err
}
