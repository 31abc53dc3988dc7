// Package sqlstore implements the enumble record store on database/sql.
// PostgreSQL is reached through the pgx or lib/pq drivers and SQLite through
// mattn/go-sqlite3.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/enumbler/internal/store"
)

// Querier is the subset of *sql.DB and *sql.Tx the store needs
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads and writes one enumble table
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect Dialect
	schema  store.Schema
}

// New creates a store for schema. driver selects the SQL dialect and must be
// the name db was opened with.
func New(db *sql.DB, driver string, schema store.Schema) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if schema.Table == "" {
		return nil, errors.New("sqlstore: schema has no table")
	}
	return &Store{db: db, dialect: dialect, schema: schema}, nil
}

// Schema returns the table schema
func (s *Store) Schema() store.Schema {
	return s.schema
}

// Dialect returns the SQL dialect in use
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) q() Querier {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

func (s *Store) table() string {
	return QuoteIdent(s.schema.Table)
}

// WithTransaction runs fn against a copy of the store bound to a transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
// Calls made inside an existing transaction join it.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	bound := *s
	bound.tx = tx
	if err := fn(&bound); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// FindOrInitialize loads the row with id, or returns a new unsaved record
func (s *Store) FindOrInitialize(ctx context.Context, id int) (*store.Record, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
		s.table(), QuoteIdent(s.schema.PK()), s.dialect.Placeholder(1))

	rows, err := s.q().QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("querying %s %d: %w", s.schema.Table, id, store.ConvertDBError(err))
	}
	defer rows.Close()

	results, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("scanning %s %d: %w", s.schema.Table, id, err)
	}
	if len(results) == 0 {
		return store.NewRecord(id), nil
	}
	return store.LoadedRecord(id, results[0]), nil
}

// Save validates (optionally) and writes the record. New records are
// inserted; persisted records have their dirty columns updated.
func (s *Store) Save(ctx context.Context, rec *store.Record, validate bool) error {
	if validate {
		if err := s.schema.Validate(rec); err != nil {
			return err
		}
	}

	var err error
	if rec.IsNew() {
		err = s.insert(ctx, rec)
	} else {
		err = s.update(ctx, rec)
	}
	if err != nil {
		return err
	}

	rec.MarkPersisted()
	return nil
}

func (s *Store) insert(ctx context.Context, rec *store.Record) error {
	pk := s.schema.PK()
	values := map[string]any{pk: rec.ID}
	for k, v := range rec.Attributes {
		if k != pk {
			values[k] = v
		}
	}

	columns := make([]string, 0, len(values))
	for k := range values {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
		args[i] = values[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table(), strings.Join(quoted, ", "), s.dialect.Placeholders(1, len(columns)))

	if _, err := s.q().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting %s %d: %w", s.schema.Table, rec.ID, store.ConvertDBError(err))
	}
	return nil
}

func (s *Store) update(ctx context.Context, rec *store.Record) error {
	pk := s.schema.PK()

	var sets []string
	var args []any
	for _, c := range rec.Dirty() {
		if c == pk {
			continue
		}
		args = append(args, rec.Attributes[c])
		sets = append(sets, fmt.Sprintf("%s = %s", QuoteIdent(c), s.dialect.Placeholder(len(args))))
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, rec.ID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		s.table(), strings.Join(sets, ", "), QuoteIdent(pk), s.dialect.Placeholder(len(args)))

	result, err := s.q().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating %s %d: %w", s.schema.Table, rec.ID, store.ConvertDBError(err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("updating %s %d: %w", s.schema.Table, rec.ID, store.ErrNotFound)
	}
	return nil
}

// ListIDs returns every stored id in ascending order
func (s *Store) ListIDs(ctx context.Context) ([]int, error) {
	pk := QuoteIdent(s.schema.PK())
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", pk, s.table(), pk)

	rows, err := s.q().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", s.schema.Table, store.ConvertDBError(err))
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("listing %s ids: %w", s.schema.Table, err)
		}
		ids = append(ids, int(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing %s ids: %w", s.schema.Table, store.ConvertDBError(err))
	}
	return ids, nil
}

// deleteBatchSize keeps each DELETE well under the bind parameter limits of
// SQLite and PostgreSQL
const deleteBatchSize = 500

// DeleteAll removes the rows with the given ids, deleteBatchSize ids per
// statement
func (s *Store) DeleteAll(ctx context.Context, ids []int) error {
	for len(ids) > 0 {
		n := min(len(ids), deleteBatchSize)
		if err := s.deleteBatch(ctx, ids[:n]); err != nil {
			return err
		}
		ids = ids[n:]
	}
	return nil
}

func (s *Store) deleteBatch(ctx context.Context, ids []int) error {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)",
		s.table(), QuoteIdent(s.schema.PK()), s.dialect.Placeholders(1, len(ids)))

	if _, err := s.q().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting from %s: %w", s.schema.Table, store.ConvertDBError(err))
	}
	return nil
}

// Columns returns the table's column names as reported by the database
func (s *Store) Columns(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", s.table())

	rows, err := s.q().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", s.schema.Table, store.ConvertDBError(err))
	}
	defer rows.Close()

	return rows.Columns()
}
