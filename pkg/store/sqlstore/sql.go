// Package sqlstore keeps field values in a Postgres table:
//
//	CREATE TABLE field_values (
//	    owner_id  TEXT  NOT NULL,
//	    field_key TEXT  NOT NULL,
//	    value     JSONB NOT NULL,
//	    PRIMARY KEY (owner_id, field_key)
//	);
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/goliatone/go-fieldblocks/pkg/store"
)

const defaultTable = "field_values"

// Store implements store.Store with database/sql.
type Store struct {
	db    *sql.DB
	table string
}

var (
	_ store.Store      = (*Store)(nil)
	_ store.BulkGetter = (*Store)(nil)
)

// Open connects to Postgres using the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open: %w", err)
	}
	return db, nil
}

// New wraps db. An empty table name uses field_values.
func New(db *sql.DB, table string) *Store {
	if table == "" {
		table = defaultTable
	}
	return &Store{db: db, table: pq.QuoteIdentifier(table)}
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, ownerID, key string) (any, bool, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE owner_id = $1 AND field_key = $2", s.table)
	var raw []byte
	err := s.db.QueryRowContext(ctx, query, ownerID, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlstore: select %q: %w", key, err)
	}
	value, err := store.DecodeValue(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// GetMany implements store.BulkGetter.
func (s *Store) GetMany(ctx context.Context, ownerID string, keys []string) (map[string]any, error) {
	out := make(map[string]any, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	query := fmt.Sprintf("SELECT field_key, value FROM %s WHERE owner_id = $1 AND field_key = ANY($2)", s.table)
	rows, err := s.db.QueryContext(ctx, query, ownerID, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select many: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("sqlstore: scan: %w", err)
		}
		value, err := store.DecodeValue(raw)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: rows: %w", err)
	}
	return out, nil
}

// Save implements store.Store; all values are upserted in one transaction.
func (s *Store) Save(ctx context.Context, ownerID string, values map[string]any) error {
	if len(values) == 0 {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO %s (owner_id, field_key, value) VALUES ($1, $2, $3)
ON CONFLICT (owner_id, field_key) DO UPDATE SET value = EXCLUDED.value`, s.table)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlstore: prepare: %w", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		payload, err := store.EncodeValue(values[key])
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, ownerID, key, payload); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlstore: upsert %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}
