package tables

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/effectsim/internal/graph"
)

// ErrMalformed indicates a manifest or sample file that cannot be loaded.
var ErrMalformed = errors.New("tables: malformed table data")

const (
	KindGrid   = "grid"
	KindFamily = "family"

	ManifestFile = "manifest.yaml"
)

type axisSpec struct {
	Name  string `yaml:"name"`
	Unit  string `yaml:"unit"`
	Scale string `yaml:"scale"`
}

type tableSpec struct {
	ID          string     `yaml:"id"`
	Kind        string     `yaml:"kind"`
	File        string     `yaml:"file"`
	Description string     `yaml:"description"`
	Source      string     `yaml:"source"`
	Param       *axisSpec  `yaml:"param"`
	Axes        []axisSpec `yaml:"axes"`
	Columns     []axisSpec `yaml:"columns"`
}

type manifest struct {
	Tables []tableSpec `yaml:"tables"`
}

func malformed(id, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformed, id, fmt.Sprintf(format, args...))
}

// Load reads manifest.yaml and every table it lists from fsys.
func Load(fsys fs.FS, log logrus.FieldLogger) (*Catalog, error) {
	raw, err := fs.ReadFile(fsys, ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("tables: read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrMalformed, err)
	}

	c := newCatalog()
	for _, spec := range m.Tables {
		if spec.ID == "" {
			return nil, malformed(spec.File, "table without id")
		}
		if _, dup := c.entries[spec.ID]; dup {
			return nil, malformed(spec.ID, "duplicate table id")
		}

		records, err := readRecords(fsys, spec)
		if err != nil {
			return nil, err
		}

		var interp graph.Interpolator
		switch spec.Kind {
		case KindGrid, "":
			interp, err = buildGrid(spec, records)
		case KindFamily:
			interp, err = buildFamily(spec, records)
		default:
			err = malformed(spec.ID, "unknown kind %q", spec.Kind)
		}
		if err != nil {
			return nil, err
		}

		c.add(interp, spec, len(records))
		log.WithFields(logrus.Fields{
			"table":   spec.ID,
			"kind":    c.info[spec.ID].Kind,
			"samples": len(records),
		}).Debug("loaded table")
	}
	return c, nil
}

func readRecords(fsys fs.FS, spec tableSpec) ([][]float64, error) {
	f, err := fsys.Open(spec.File)
	if err != nil {
		return nil, fmt.Errorf("tables: %s: %w", spec.ID, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comment = '#'
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, malformed(spec.ID, "read header: %v", err)
	}
	want := expectedHeader(spec)
	if len(header) != len(want) {
		return nil, malformed(spec.ID, "header has %d fields, manifest names %d", len(header), len(want))
	}
	for i := range want {
		if strings.TrimSpace(header[i]) != want[i] {
			return nil, malformed(spec.ID, "header field %d is %q, manifest names %q", i, header[i], want[i])
		}
	}

	var records [][]float64
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, malformed(spec.ID, "%v", err)
		}
		row := make([]float64, len(rec))
		for i, s := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, malformed(spec.ID, "line %d field %s: %v", line, want[i], err)
			}
			row[i] = v
		}
		records = append(records, row)
	}
	if len(records) == 0 {
		return nil, malformed(spec.ID, "no samples")
	}
	return records, nil
}

func expectedHeader(spec tableSpec) []string {
	var names []string
	if spec.Param != nil {
		names = append(names, spec.Param.Name)
	}
	for _, a := range spec.Axes {
		names = append(names, a.Name)
	}
	for _, c := range spec.Columns {
		names = append(names, c.Name)
	}
	return names
}

func toAxis(id string, a axisSpec) (graph.Axis, error) {
	s, err := graph.ParseScale(a.Scale)
	if err != nil {
		return graph.Axis{}, malformed(id, "axis %s: %v", a.Name, err)
	}
	return graph.Axis{Name: a.Name, Unit: a.Unit, Scale: s}, nil
}

func toColumn(id string, a axisSpec) (graph.Column, error) {
	s, err := graph.ParseScale(a.Scale)
	if err != nil {
		return graph.Column{}, malformed(id, "column %s: %v", a.Name, err)
	}
	return graph.Column{Name: a.Name, Unit: a.Unit, Scale: s}, nil
}

// buildGrid derives each axis from the distinct values in its field and
// requires every grid cell to appear exactly once.
func buildGrid(spec tableSpec, records [][]float64) (*graph.Table, error) {
	k := len(spec.Axes)
	if k == 0 || len(spec.Columns) == 0 {
		return nil, malformed(spec.ID, "grid needs axes and columns")
	}

	axes := make([]graph.Axis, k)
	index := make([]map[float64]int, k)
	size := 1
	for a, as := range spec.Axes {
		ax, err := toAxis(spec.ID, as)
		if err != nil {
			return nil, err
		}
		seen := make(map[float64]bool)
		for _, rec := range records {
			if !seen[rec[a]] {
				seen[rec[a]] = true
				ax.Points = append(ax.Points, rec[a])
			}
		}
		sort.Float64s(ax.Points)
		index[a] = make(map[float64]int, len(ax.Points))
		for i, p := range ax.Points {
			index[a][p] = i
		}
		axes[a] = ax
		size *= len(ax.Points)
	}
	if len(records) != size {
		return nil, malformed(spec.ID, "%d records for a grid of %d cells", len(records), size)
	}

	cols := make([]graph.Column, len(spec.Columns))
	for c, cs := range spec.Columns {
		col, err := toColumn(spec.ID, cs)
		if err != nil {
			return nil, err
		}
		col.Values = make([]float64, size)
		cols[c] = col
	}

	filled := make([]bool, size)
	for n, rec := range records {
		flat := 0
		for a := 0; a < k; a++ {
			flat = flat*len(axes[a].Points) + index[a][rec[a]]
		}
		if filled[flat] {
			return nil, malformed(spec.ID, "record %d repeats a grid cell", n+1)
		}
		filled[flat] = true
		for c := range cols {
			cols[c].Values[flat] = rec[k+c]
		}
	}

	t, err := graph.New(spec.ID, axes, cols)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	return t, nil
}

// buildFamily groups consecutive records by parameter into curves. Sample
// order within a curve is kept as written.
func buildFamily(spec tableSpec, records [][]float64) (*graph.Family, error) {
	if spec.Param == nil || len(spec.Axes) != 1 || len(spec.Columns) != 1 {
		return nil, malformed(spec.ID, "family needs one param, one axis and one column")
	}
	param, err := toAxis(spec.ID, *spec.Param)
	if err != nil {
		return nil, err
	}
	x, err := toAxis(spec.ID, spec.Axes[0])
	if err != nil {
		return nil, err
	}
	value, err := toColumn(spec.ID, spec.Columns[0])
	if err != nil {
		return nil, err
	}

	var curves []graph.Curve
	done := make(map[float64]bool)
	for _, rec := range records {
		p := rec[0]
		if n := len(curves); n == 0 || curves[n-1].Param != p {
			if done[p] {
				return nil, malformed(spec.ID, "curve %s=%g is split across the file", param.Name, p)
			}
			done[p] = true
			curves = append(curves, graph.Curve{Param: p})
		}
		cur := &curves[len(curves)-1]
		cur.X = append(cur.X, rec[1])
		cur.Y = append(cur.Y, rec[2])
	}

	f, err := graph.NewFamily(spec.ID, param, x, value, curves)
	if err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	return f, nil
}
