package enumble

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	utilstrings "github.com/conduit-lang/enumbler/internal/util/strings"
)

// DefaultLabelColumn is the column an entry's label is persisted to
const DefaultLabelColumn = "label"

// Name is the canonical symbolic identifier of an entry
type Name string

// String returns the name as a plain string
func (n Name) String() string {
	return string(n)
}

// Entry is one declared enum member. It is immutable once constructed.
type Entry struct {
	id          int
	name        Name
	label       string
	labelColumn string
	attributes  map[string]any
}

// EntryOption configures an entry under construction
type EntryOption func(*entryConfig)

type entryConfig struct {
	label       *string
	labelColumn string
	attributes  map[string]any
}

// WithLabel sets the display label instead of the dasherized name
func WithLabel(label string) EntryOption {
	return func(c *entryConfig) {
		c.label = &label
	}
}

// WithAttribute adds one extra persisted column value
func WithAttribute(column string, value any) EntryOption {
	return func(c *entryConfig) {
		c.attributes[column] = value
	}
}

// WithAttributes adds extra persisted column values
func WithAttributes(attrs map[string]any) EntryOption {
	return func(c *entryConfig) {
		for k, v := range attrs {
			c.attributes[k] = v
		}
	}
}

func withLabelColumn(column string) EntryOption {
	return func(c *entryConfig) {
		c.labelColumn = column
	}
}

// NewEntry builds an entry. The id must be coercible to an integer.
func NewEntry(name Name, id any, opts ...EntryOption) (*Entry, error) {
	cfg := entryConfig{
		labelColumn: DefaultLabelColumn,
		attributes:  make(map[string]any),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if strings.TrimSpace(string(name)) == "" {
		return nil, &ValidationError{Field: "name", Message: "must provide a name"}
	}

	n, ok := coerceID(id)
	if !ok {
		return nil, &ValidationError{Name: name, Field: "id", Message: "must provide a numeric primary key"}
	}

	label := utilstrings.Dasherize(string(name))
	if cfg.label != nil {
		label = *cfg.label
	}

	return &Entry{
		id:          n,
		name:        name,
		label:       label,
		labelColumn: cfg.labelColumn,
		attributes:  cfg.attributes,
	}, nil
}

// ID returns the primary key
func (e *Entry) ID() int {
	return e.id
}

// Name returns the symbolic name
func (e *Entry) Name() Name {
	return e.name
}

// Label returns the display label
func (e *Entry) Label() string {
	return e.label
}

// LabelColumn returns the column the label is persisted to
func (e *Entry) LabelColumn() string {
	return e.labelColumn
}

// Attribute returns one extra attribute
func (e *Entry) Attribute(column string) (any, bool) {
	v, ok := e.attributes[column]
	return v, ok
}

// ExtraColumns returns the extra attribute column names in sorted order
func (e *Entry) ExtraColumns() []string {
	cols := make([]string, 0, len(e.attributes))
	for k := range e.attributes {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// Attributes returns the column values to persist for this entry:
// id, the label under its label column, and every extra attribute.
func (e *Entry) Attributes() map[string]any {
	attrs := make(map[string]any, len(e.attributes)+2)
	for k, v := range e.attributes {
		attrs[k] = v
	}
	attrs["id"] = e.id
	attrs[e.labelColumn] = e.label
	return attrs
}

// Equal reports whether other shares this entry's id, name or label
func (e *Entry) Equal(other *Entry) bool {
	if e == nil || other == nil {
		return false
	}
	return other.id == e.id || other.name == e.name || other.label == e.label
}

// GraphQLEnum returns the screaming form of the name
func (e *Entry) GraphQLEnum() string {
	return utilstrings.Screaming(string(e.name))
}

// String returns the name
func (e *Entry) String() string {
	return string(e.name)
}

// coerceID converts integer-like values to an int
func coerceID(v any) (int, bool) {
	switch v := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseInteger(v)
	case []byte:
		return parseInteger(string(v))
	case float32:
		return truncate(float64(v))
	case float64:
		return truncate(v)
	}

	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseInteger accepts Go integer literal syntax with surrounding whitespace
func parseInteger(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 0, 0)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

func truncate(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
