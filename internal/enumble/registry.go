package enumble

import (
	"fmt"
	"sort"

	utilstrings "github.com/conduit-lang/enumbler/internal/util/strings"
)

// Model describes the owning model and its backing table
type Model struct {
	Name        string
	Table       string
	LabelColumn string
	// Columns is the allow-list of extra attribute columns; empty allows any
	Columns []string
}

// Option configures a Registry
type Option func(*Model)

// WithTable overrides the derived table name
func WithTable(table string) Option {
	return func(m *Model) {
		m.Table = table
	}
}

// WithLabelColumn sets the column labels are persisted to
func WithLabelColumn(column string) Option {
	return func(m *Model) {
		m.LabelColumn = column
	}
}

// WithColumns restricts extra attributes to the given columns
func WithColumns(columns ...string) Option {
	return func(m *Model) {
		m.Columns = append(m.Columns, columns...)
	}
}

// Registry is the ordered set of entries declared for one model.
//
// Declaration is expected to happen in a single initialization phase.
// Add is not safe for concurrent use; once declaration is over the
// registry is read-only and all lookups are safe for concurrent readers.
type Registry struct {
	model      Model
	allowed    map[string]struct{}
	entries    []*Entry
	byID       map[int]*Entry
	byName     map[Name]*Entry
	predicates map[Name]Predicate
	frozen     bool
}

// NewRegistry creates an empty registry for model
func NewRegistry(model string, opts ...Option) *Registry {
	m := Model{Name: model}
	for _, opt := range opts {
		opt(&m)
	}
	if m.Table == "" {
		m.Table = utilstrings.ToTableName(model)
	}
	if m.LabelColumn == "" {
		m.LabelColumn = DefaultLabelColumn
	}

	var allowed map[string]struct{}
	if len(m.Columns) > 0 {
		allowed = make(map[string]struct{}, len(m.Columns))
		for _, c := range m.Columns {
			allowed[c] = struct{}{}
		}
	}

	return &Registry{
		model:      m,
		allowed:    allowed,
		byID:       make(map[int]*Entry),
		byName:     make(map[Name]*Entry),
		predicates: make(map[Name]Predicate),
	}
}

// Model returns the owning model description
func (r *Registry) Model() Model {
	m := r.model
	m.Columns = append([]string(nil), r.model.Columns...)
	return m
}

// Declare builds an entry for this model and adds it
func (r *Registry) Declare(name Name, id any, opts ...EntryOption) (*Entry, error) {
	opts = append(opts, withLabelColumn(r.model.LabelColumn))
	e, err := NewEntry(name, id, opts...)
	if err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Model = r.model.Name
		}
		return nil, err
	}

	for _, col := range e.ExtraColumns() {
		if col == "id" || col == r.model.LabelColumn {
			return nil, &ValidationError{
				Model:   r.model.Name,
				Name:    name,
				Field:   col,
				Message: "is reserved and cannot be set as an extra attribute",
			}
		}
		if r.allowed == nil {
			continue
		}
		if _, ok := r.allowed[col]; !ok {
			return nil, &ValidationError{
				Model:   r.model.Name,
				Name:    name,
				Field:   col,
				Message: fmt.Sprintf("is not a column of %s", r.model.Table),
			}
		}
	}

	if err := r.Add(e); err != nil {
		return nil, err
	}
	return e, nil
}

// MustDeclare is like Declare but panics on error.
// It is meant for package-level declarations.
func (r *Registry) MustDeclare(name Name, id any, opts ...EntryOption) *Entry {
	e, err := r.Declare(name, id, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Add appends e unless an equal entry was already declared
func (r *Registry) Add(e *Entry) error {
	if e == nil {
		return &ValidationError{Model: r.model.Name, Message: "nil entry"}
	}
	if r.frozen {
		return fmt.Errorf("%s: declaring %s: %w", r.model.Name, e.Name(), ErrFrozen)
	}
	for _, existing := range r.entries {
		if existing.Equal(e) {
			return &DuplicateEntryError{Model: r.model.Name, Entry: e, Existing: existing}
		}
	}

	r.entries = append(r.entries, e)
	r.byID[e.ID()] = e
	r.byName[e.Name()] = e
	r.predicates[e.Name()] = predicateFor(e)
	return nil
}

// Freeze ends the declaration phase
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether the declaration phase is over
func (r *Registry) Frozen() bool {
	return r.frozen
}

// FindByName returns the entry with exactly this name
func (r *Registry) FindByName(name Name) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Member looks up an entry by attribute-style name (Color.black).
// Unknown names fail with ErrNoSuchMember.
func (r *Registry) Member(name string) (*Entry, error) {
	if e, ok := r.byName[Name(name)]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%s.%s: %w", r.model.Name, name, ErrNoSuchMember)
}

// ByID returns the entry with this id
func (r *Registry) ByID(id int) (*Entry, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// All returns the entries in declaration order
func (r *Registry) All() []*Entry {
	return append([]*Entry(nil), r.entries...)
}

// Len returns the number of declared entries
func (r *Registry) Len() int {
	return len(r.entries)
}

// First returns the first declared entry
func (r *Registry) First() (*Entry, bool) {
	if len(r.entries) == 0 {
		return nil, false
	}
	return r.entries[0], true
}

// Last returns the last declared entry
func (r *Registry) Last() (*Entry, bool) {
	if len(r.entries) == 0 {
		return nil, false
	}
	return r.entries[len(r.entries)-1], true
}

// IDs returns the declared ids in ascending order
func (r *Registry) IDs() []int {
	ids := make([]int, 0, len(r.entries))
	for _, e := range r.entries {
		ids = append(ids, e.ID())
	}
	sort.Ints(ids)
	return ids
}

// MaxID returns the highest declared id, or 0 when empty
func (r *Registry) MaxID() int {
	maxID := 0
	for _, e := range r.entries {
		if e.ID() > maxID {
			maxID = e.ID()
		}
	}
	return maxID
}

// Resolver returns a case-insensitive resolver over this registry
func (r *Registry) Resolver() *Resolver {
	return NewResolver(r)
}

// owns reports whether e is one of this registry's own entries
func (r *Registry) owns(e *Entry) bool {
	if e == nil {
		return false
	}
	found, ok := r.byID[e.ID()]
	return ok && found == e
}
