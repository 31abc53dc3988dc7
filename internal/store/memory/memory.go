// Package memory provides an in-memory record store, used for tests and for
// running the CLI without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/conduit-lang/enumbler/internal/store"
)

// Store keeps rows in a map keyed by primary key
type Store struct {
	schema store.Schema
	mu     sync.RWMutex
	rows   map[int]map[string]any
}

// New creates an empty store for schema
func New(schema store.Schema) *Store {
	return &Store{
		schema: schema,
		rows:   make(map[int]map[string]any),
	}
}

// Schema returns the table schema
func (s *Store) Schema() store.Schema {
	return s.schema
}

// FindOrInitialize returns the stored row or a new unsaved record
func (s *Store) FindOrInitialize(ctx context.Context, id int) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if row, ok := s.rows[id]; ok {
		return store.LoadedRecord(id, row), nil
	}
	return store.NewRecord(id), nil
}

// Save validates (optionally) and writes the record
func (s *Store) Save(ctx context.Context, rec *store.Record, validate bool) error {
	if validate {
		if err := s.schema.Validate(rec); err != nil {
			return err
		}
	}

	row := make(map[string]any, len(rec.Attributes)+1)
	for k, v := range rec.Attributes {
		row[k] = v
	}
	row[s.schema.PK()] = rec.ID

	s.mu.Lock()
	s.rows[rec.ID] = row
	s.mu.Unlock()

	rec.MarkPersisted()
	return nil
}

// ListIDs returns the stored ids in ascending order
func (s *Store) ListIDs(ctx context.Context) ([]int, error) {
	return s.IDs(), nil
}

// DeleteAll removes the rows with the given ids; missing ids are ignored
func (s *Store) DeleteAll(ctx context.Context, ids []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		delete(s.rows, id)
	}
	return nil
}

// Insert writes a raw row without validation
func (s *Store) Insert(id int, attrs map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rows[id]; exists {
		return fmt.Errorf("%s %d: %w", s.schema.Table, id, store.ErrUniqueViolation)
	}
	row := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		row[k] = v
	}
	row[s.schema.PK()] = id
	s.rows[id] = row
	return nil
}

// Get returns a copy of one row
func (s *Store) Get(id int) (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out, true
}

// IDs returns the stored ids in ascending order
func (s *Store) IDs() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Rows returns a copy of every row, keyed by id
func (s *Store) Rows() map[int]map[string]any {
	out := make(map[int]map[string]any)
	for _, id := range s.IDs() {
		out[id], _ = s.Get(id)
	}
	return out
}
