// Package catalog turns configured models into frozen enumble registries.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/conduit-lang/enumbler/internal/config"
	"github.com/conduit-lang/enumbler/internal/enumble"
	"github.com/conduit-lang/enumbler/internal/store"
)

// ErrUnknownModel is returned when no registry exists for a model name
var ErrUnknownModel = errors.New("unknown model")

// Catalog holds one registry per configured model
type Catalog struct {
	registries map[string]*enumble.Registry
	order      []string
}

// New returns an empty catalog
func New() *Catalog {
	return &Catalog{registries: make(map[string]*enumble.Registry)}
}

// Build declares every configured model and entry. Registries are frozen
// once their entries are declared.
func Build(models []config.ModelConfig) (*Catalog, error) {
	c := New()
	for _, m := range models {
		reg, err := BuildRegistry(m)
		if err != nil {
			return nil, err
		}
		if err := c.Add(reg); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BuildRegistry declares the entries of one model
func BuildRegistry(m config.ModelConfig) (*enumble.Registry, error) {
	var opts []enumble.Option
	if m.Table != "" {
		opts = append(opts, enumble.WithTable(m.Table))
	}
	if m.LabelColumn != "" {
		opts = append(opts, enumble.WithLabelColumn(m.LabelColumn))
	}
	if len(m.Columns) > 0 {
		opts = append(opts, enumble.WithColumns(m.Columns...))
	}

	reg := enumble.NewRegistry(m.Name, opts...)
	for _, e := range m.Entries {
		var entryOpts []enumble.EntryOption
		if e.Label != "" {
			entryOpts = append(entryOpts, enumble.WithLabel(e.Label))
		}
		if len(e.Attributes) > 0 {
			entryOpts = append(entryOpts, enumble.WithAttributes(e.Attributes))
		}
		if _, err := reg.Declare(enumble.Name(e.Name), e.ID, entryOpts...); err != nil {
			return nil, fmt.Errorf("declaring %s: %w", m.Name, err)
		}
	}
	reg.Freeze()
	return reg, nil
}

// Add registers reg under its model name, ignoring case
func (c *Catalog) Add(reg *enumble.Registry) error {
	name := reg.Model().Name
	key := strings.ToLower(name)
	if _, exists := c.registries[key]; exists {
		return fmt.Errorf("model %s is already registered", name)
	}
	c.registries[key] = reg
	c.order = append(c.order, key)
	return nil
}

// Get returns the registry for a model name, ignoring case
func (c *Catalog) Get(name string) (*enumble.Registry, error) {
	reg, ok := c.registries[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return reg, nil
}

// Select returns the registries for names, or every registry when names is empty
func (c *Catalog) Select(names ...string) ([]*enumble.Registry, error) {
	if len(names) == 0 {
		return c.All(), nil
	}
	regs := make([]*enumble.Registry, 0, len(names))
	for _, name := range names {
		reg, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// All returns the registries in configuration order
func (c *Catalog) All() []*enumble.Registry {
	regs := make([]*enumble.Registry, 0, len(c.order))
	for _, key := range c.order {
		regs = append(regs, c.registries[key])
	}
	return regs
}

// Names returns the model names, sorted
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.order))
	for _, reg := range c.All() {
		names = append(names, reg.Model().Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of models
func (c *Catalog) Len() int {
	return len(c.order)
}

// SchemaFor derives the store schema of a registry's table. The label column
// is required; extra columns are only checked when the model restricts them.
func SchemaFor(reg *enumble.Registry) store.Schema {
	m := reg.Model()
	schema := store.Schema{
		Table:    m.Table,
		Required: []string{m.LabelColumn},
	}
	if len(m.Columns) > 0 {
		schema.Columns = append([]string{m.LabelColumn}, m.Columns...)
	}
	return schema
}
