package enumble

// Predicate reports whether a host record carries a particular entry
type Predicate func(rec Enumbled) bool

func predicateFor(e *Entry) Predicate {
	return func(rec Enumbled) bool {
		if isNilRecord(rec) {
			return false
		}
		return rec.Enumble() == e
	}
}

// Predicates returns one predicate per declared name. The table is built as
// entries are declared.
func (r *Registry) Predicates() map[Name]Predicate {
	out := make(map[Name]Predicate, len(r.predicates))
	for name, p := range r.predicates {
		out[name] = p
	}
	return out
}

// Predicate returns the predicate for name
func (r *Registry) Predicate(name Name) (Predicate, bool) {
	p, ok := r.predicates[name]
	return p, ok
}

// Is reports whether rec carries an entry matching any of keys
func (r *Registry) Is(rec Enumbled, keys ...any) bool {
	if isNilRecord(rec) {
		return false
	}
	own := rec.Enumble()
	if !r.owns(own) {
		return false
	}
	for _, e := range r.Resolver().Find(keys...) {
		if e == own {
			return true
		}
	}
	return false
}

// Constants maps each entry's screaming name to its id (BLACK -> 1)
func (r *Registry) Constants() map[string]int {
	out := make(map[string]int, len(r.entries))
	for _, e := range r.entries {
		out[e.GraphQLEnum()] = e.ID()
	}
	return out
}

// Ref is a host record's association to one entry of a registry, typically
// backed by a foreign key column such as color_id.
type Ref struct {
	Registry *Registry
	ID       int
}

// RefTo returns a Ref to e's id
func (r *Registry) RefTo(e *Entry) Ref {
	return Ref{Registry: r, ID: e.ID()}
}

// Enumble returns the referenced entry, or nil if the id is not declared
func (ref Ref) Enumble() *Entry {
	if ref.Registry == nil {
		return nil
	}
	e, _ := ref.Registry.ByID(ref.ID)
	return e
}

// String returns the referenced entry's name, or the bare id
func (ref Ref) String() string {
	if e := ref.Enumble(); e != nil {
		return e.String()
	}
	return "#" + IDKey(ref.ID).String()
}
