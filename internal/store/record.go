// Package store holds the persisted side of an enumble table: the row model,
// the table schema used to validate saves, and database error conversion.
// Concrete stores live in the memory, sqlstore and redisstore subpackages.
package store

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// Record is one persisted row, addressed by its integer primary key
type Record struct {
	ID         int
	Attributes map[string]any
	persisted  bool
	dirty      map[string]struct{}
}

// NewRecord returns a record that has not been saved yet
func NewRecord(id int) *Record {
	return &Record{
		ID:         id,
		Attributes: map[string]any{},
		dirty:      map[string]struct{}{},
	}
}

// LoadedRecord returns a record read back from storage
func LoadedRecord(id int, attrs map[string]any) *Record {
	r := NewRecord(id)
	for k, v := range attrs {
		r.Attributes[k] = v
	}
	r.persisted = true
	return r
}

// IsNew reports whether the record has never been saved
func (r *Record) IsNew() bool {
	return !r.persisted
}

// MarkPersisted flags the record as saved and clears its dirty columns.
// Stores call it after a write.
func (r *Record) MarkPersisted() {
	r.persisted = true
	r.dirty = map[string]struct{}{}
}

// Assign overwrites the given attributes, marking the columns whose value
// actually changes as dirty. The record id is kept in sync with an "id"
// attribute when one is assigned.
func (r *Record) Assign(attrs map[string]any) {
	for k, v := range attrs {
		current, ok := r.Attributes[k]
		if !ok || !sameValue(current, v) {
			r.dirty[k] = struct{}{}
		}
		r.Attributes[k] = v
	}
	if v, ok := attrs["id"]; ok {
		if id, err := cast.ToIntE(v); err == nil {
			r.ID = id
		}
	}
}

// Changed reports whether assigning attrs would modify the record. Scalars
// are compared by their string form so driver types (int64, []byte) match the
// Go values declared on entries; maps and slices by their JSON form.
func (r *Record) Changed(attrs map[string]any) bool {
	if r.IsNew() {
		return true
	}
	for k, v := range attrs {
		current, ok := r.Attributes[k]
		if !ok || !sameValue(current, v) {
			return true
		}
	}
	return false
}

// Dirty returns the columns changed by Assign since the last save, sorted
func (r *Record) Dirty() []string {
	cols := make([]string, 0, len(r.dirty))
	for k := range r.dirty {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Columns returns the attribute names in sorted order
func (r *Record) Columns() []string {
	cols := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, aOK := canonical(a)
	bs, bOK := canonical(b)
	return aOK && bOK && as == bs
}

// canonical renders v as a comparable string. Scalars use their cast string
// form; anything else, and strings holding a JSON object or array, are
// re-encoded as JSON so maps decoded from storage match declared ones.
func canonical(v any) (string, bool) {
	if s, err := cast.ToStringE(v); err == nil {
		trimmed := strings.TrimSpace(s)
		if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
			return s, true
		}
		var decoded any
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return s, true
		}
		v = decoded
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(encoded), true
}
