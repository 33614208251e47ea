// Package demoapi is a local stand-in for the training-management API: a
// SQLite-backed JSON document store served over the same REST surface the
// client consumes. It backs `trainctl demo serve` and integration tests.
package demoapi

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/oakwood-commons/trainctl/internal/record"
)

//go:embed schema.sql
var schemaSQL string

// LockedField marks seeded rows that refuse deletion.
const LockedField = "locked"

var (
	ErrNotFound = errors.New("entry not found")
	ErrLocked   = errors.New("entry is locked and cannot be deleted")
	ErrNoID     = errors.New("body must contain an id")
)

// Store keeps rows per table as JSON documents.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed replaces the content of every table in data.
func (s *Store) Seed(ctx context.Context, data map[string][]map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for table, rows := range data {
		if _, err := tx.ExecContext(ctx, "DELETE FROM rows WHERE tbl = ?", table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		for i, row := range rows {
			id := record.FormatID(row[record.IDField])
			if id == "" {
				return fmt.Errorf("seed %s[%d]: %w", table, i, ErrNoID)
			}
			doc, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", table, id, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO rows (tbl, id, position, doc) VALUES (?, ?, ?, ?)",
				table, id, i, string(doc),
			); err != nil {
				return fmt.Errorf("insert %s/%s: %w", table, id, err)
			}
		}
	}
	return tx.Commit()
}

// Tables lists table names that hold rows.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT tbl FROM rows ORDER BY tbl")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// List returns the rows of table in insertion order.
func (s *Store) List(ctx context.Context, table string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT doc FROM rows WHERE tbl = ? ORDER BY position", table)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	out := []record.Record{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var rec record.Record
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode %s row: %w", table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Get returns one row.
func (s *Store) Get(ctx context.Context, table, id string) (record.Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM rows WHERE tbl = ? AND id = ?", table, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", table, id, err)
	}
	var rec record.Record
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", table, id, err)
	}
	return rec, nil
}

// Delete removes one row. Rows with locked=true are refused.
func (s *Store) Delete(ctx context.Context, table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if locked, _ := rec[LockedField].(bool); locked {
		return ErrLocked
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM rows WHERE tbl = ? AND id = ?", table, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	return nil
}

// Update merges patch into the row identified by patch["id"] and returns the result.
func (s *Store) Update(ctx context.Context, table string, patch map[string]any) (record.Record, error) {
	id := record.FormatID(patch[record.IDField])
	if id == "" {
		return nil, ErrNoID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		if k == record.IDField {
			continue
		}
		rec[k] = v
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", table, id, err)
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE rows SET doc = ? WHERE tbl = ? AND id = ?", string(doc), table, id); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", table, id, err)
	}
	return rec, nil
}
