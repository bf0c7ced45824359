package tables

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/effectsim/internal/graph"
)

// Ids of the shipped tables.
const (
	WSEG10SourceLow        = "wseg10/source-low"
	WSEG10SourceHigh       = "wseg10/source-high"
	WSEG10Bio              = "wseg10/bio"
	SovietMachOverpressure = "soviet/overpressure-mach"
)

var ErrUnknownTable = errors.New("tables: unknown table")

//go:embed data
var embedded embed.FS

// Info describes a loaded table for listings.
type Info struct {
	ID          string
	Kind        string
	Description string
	Source      string
	File        string
	Axes        []string
	Columns     []string
	Samples     int
}

// Catalog holds immutable tables keyed by id. Build it once and pass it by
// pointer; it is safe for concurrent readers.
type Catalog struct {
	entries map[string]graph.Interpolator
	info    map[string]Info
	order   []string
}

func newCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]graph.Interpolator),
		info:    make(map[string]Info),
	}
}

// Default loads the tables embedded in the binary.
func Default(log logrus.FieldLogger) (*Catalog, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub, log)
}

func (c *Catalog) add(interp graph.Interpolator, spec tableSpec, samples int) {
	kind := spec.Kind
	if kind == "" {
		kind = KindGrid
	}
	axes := make([]string, 0, len(spec.Axes)+1)
	if spec.Param != nil {
		axes = append(axes, spec.Param.Name)
	}
	for _, a := range spec.Axes {
		axes = append(axes, a.Name)
	}
	cols := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = col.Name
	}

	c.entries[spec.ID] = interp
	c.info[spec.ID] = Info{
		ID:          spec.ID,
		Kind:        kind,
		Description: spec.Description,
		Source:      spec.Source,
		File:        spec.File,
		Axes:        axes,
		Columns:     cols,
		Samples:     samples,
	}
	c.order = append(c.order, spec.ID)
}

// Get returns the table or family registered under id.
func (c *Catalog) Get(id string) (graph.Interpolator, error) {
	t, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, id)
	}
	return t, nil
}

// Table returns a dense grid table.
func (c *Catalog) Table(id string) (*graph.Table, error) {
	interp, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	t, ok := interp.(*graph.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %s, not a grid", ErrUnknownTable, id, c.info[id].Kind)
	}
	return t, nil
}

// Family returns a ragged curve family.
func (c *Catalog) Family(id string) (*graph.Family, error) {
	interp, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	f, ok := interp.(*graph.Family)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %s, not a family", ErrUnknownTable, id, c.info[id].Kind)
	}
	return f, nil
}

// Interpolate evaluates table id at coords.
func (c *Catalog) Interpolate(id string, coords ...float64) (float64, error) {
	t, err := c.Get(id)
	if err != nil {
		return 0, err
	}
	return t.Interpolate(coords...)
}

// Info returns the listing entry for id.
func (c *Catalog) Info(id string) (Info, bool) {
	i, ok := c.info[id]
	return i, ok
}

// List returns table descriptions in manifest order.
func (c *Catalog) List() []Info {
	out := make([]Info, len(c.order))
	for i, id := range c.order {
		out[i] = c.info[id]
	}
	return out
}
