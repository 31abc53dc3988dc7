package enumble

import "strings"

// Resolver maps lookup keys to a registry's entries without touching storage.
// A Resolver is a small value; configure copies with CaseSensitive.
type Resolver struct {
	reg           *Registry
	caseSensitive bool
}

// NewResolver returns a case-insensitive resolver over reg
func NewResolver(reg *Registry) *Resolver {
	return &Resolver{reg: reg}
}

// CaseSensitive returns a copy of the resolver with the given string
// matching policy
func (r *Resolver) CaseSensitive(on bool) *Resolver {
	c := *r
	c.caseSensitive = on
	return &c
}

// Registry returns the registry being resolved against
func (r *Resolver) Registry() *Registry {
	return r.reg
}

// Resolve resolves a single key.
//
// Precedence: ids, then exact names, then strings (an integer-looking string
// is an id and never falls back to label matching), then entries, then
// records carrying their own entry.
func (r *Resolver) Resolve(key Key) (*Entry, bool) {
	var e *Entry
	switch k := key.(type) {
	case IDKey:
		e = r.reg.byID[int(k)]
	case NameKey:
		e = r.reg.byName[Name(k)]
	case StringKey:
		if id, ok := parseInteger(string(k)); ok {
			e = r.reg.byID[id]
		} else {
			e = r.matchString(string(k))
		}
	case EntryKey:
		e = r.matchEntry(k.Entry)
	case RecordKey:
		if !isNilRecord(k.Record) {
			if own := k.Record.Enumble(); r.reg.owns(own) {
				e = own
			}
		}
	}
	return e, e != nil
}

// Find resolves every distinct key, returning nil in the slots that did not
// resolve. Slots follow the de-duplicated input order.
func (r *Resolver) Find(keys ...any) []*Entry {
	found, _ := r.find(Keys(keys...))
	return found
}

// FindStrict is like Find but fails with a *ResolutionError naming the
// first key that did not resolve.
func (r *Resolver) FindStrict(keys ...any) ([]*Entry, error) {
	found, missing := r.find(Keys(keys...))
	if missing != nil {
		return nil, &ResolutionError{Model: r.reg.model.Name, Key: missing}
	}
	return found, nil
}

// FindOne returns the first slot of Find
func (r *Resolver) FindOne(keys ...any) *Entry {
	found := r.Find(keys...)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

// FindOneStrict returns the first slot of FindStrict
func (r *Resolver) FindOneStrict(keys ...any) (*Entry, error) {
	found, err := r.FindStrict(keys...)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, &ResolutionError{Model: r.reg.model.Name, Key: unknownKey{value: "<no keys>"}}
	}
	return found[0], nil
}

// IDsFrom is Find mapped to ids; unresolved slots are nil
func (r *Resolver) IDsFrom(keys ...any) []*int {
	found := r.Find(keys...)
	ids := make([]*int, len(found))
	for i, e := range found {
		if e != nil {
			id := e.ID()
			ids[i] = &id
		}
	}
	return ids
}

// IDsFromStrict is FindStrict mapped to ids
func (r *Resolver) IDsFromStrict(keys ...any) ([]int, error) {
	found, err := r.FindStrict(keys...)
	if err != nil {
		return nil, err
	}
	ids := make([]int, len(found))
	for i, e := range found {
		ids[i] = e.ID()
	}
	return ids, nil
}

// IDFrom returns the id of FindOne
func (r *Resolver) IDFrom(keys ...any) (int, bool) {
	ids := r.IDsFrom(keys...)
	if len(ids) == 0 || ids[0] == nil {
		return 0, false
	}
	return *ids[0], true
}

// IDFromStrict returns the id of FindOneStrict
func (r *Resolver) IDFromStrict(keys ...any) (int, error) {
	e, err := r.FindOneStrict(keys...)
	if err != nil {
		return 0, err
	}
	return e.ID(), nil
}

// find resolves keys in order and reports the first one that missed
func (r *Resolver) find(keys []Key) ([]*Entry, Key) {
	found := make([]*Entry, len(keys))
	var missing Key
	for i, k := range keys {
		e, ok := r.Resolve(k)
		if !ok && missing == nil {
			missing = k
		}
		found[i] = e
	}
	return found, missing
}

func (r *Resolver) matchString(s string) *Entry {
	for _, e := range r.reg.entries {
		if r.caseSensitive {
			if e.label == s || string(e.name) == s {
				return e
			}
			continue
		}
		if strings.EqualFold(e.label, s) || strings.EqualFold(string(e.name), s) {
			return e
		}
	}
	return nil
}

func (r *Resolver) matchEntry(other *Entry) *Entry {
	for _, e := range r.reg.entries {
		if e.Equal(other) {
			return e
		}
	}
	return nil
}
