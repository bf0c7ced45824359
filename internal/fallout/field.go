package fallout

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	ErrUnknownQuantity = errors.New("fallout: unknown field quantity")
	ErrNoCellIntegral  = errors.New("fallout: quantity has no cell integral")
)

// Quantity names accepted by Field.Quantity.
const (
	QuantityDeposition = "deposition"
	QuantityArrival    = "arrival"
	QuantityDose       = "dose"
	QuantityERD        = "erd"
)

// Quantities lists the sampled quantities with their units.
var Quantities = []struct{ Name, Unit string }{
	{QuantityDeposition, "R/h at H+1"},
	{QuantityArrival, "h"},
	{QuantityDose, "R"},
	{QuantityERD, "R"},
}

// Field is the model sampled over a grid. Matrices are indexed [j][i],
// j crosswind and i downwind.
type Field struct {
	Scenario Scenario
	Grid     Grid
	Source   SourceTerm
	Frame    Frame

	X []float64
	Y []float64

	Deposition [][]float64 // dose rate at H+1, R/h
	Arrival    [][]float64 // h
	Dose       [][]float64 // R accumulated through the horizon
	ERD        [][]float64 // R, 30-day equivalent residual dose

	Cells CellIntegrals

	LowReliability bool
}

func matrix(ny, nx int) [][]float64 {
	m := make([][]float64, ny)
	for j := range m {
		m[j] = make([]float64, nx)
	}
	return m
}

// Evaluate builds the model for sc and samples it over grid.
func Evaluate(sc Scenario, grid Grid, tabs Tables) (*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	m, err := New(sc, tabs)
	if err != nil {
		return nil, err
	}
	return m.Field(grid)
}

// Field samples the model over grid.
func (m *Model) Field(grid Grid) (*Field, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	f := &Field{
		Scenario:       m.sc,
		Grid:           grid,
		Source:         m.src,
		Frame:          m.frame,
		X:              grid.Xs(),
		Y:              grid.Ys(),
		Deposition:     matrix(grid.Ny, grid.Nx),
		Arrival:        matrix(grid.Ny, grid.Nx),
		Dose:           matrix(grid.Ny, grid.Nx),
		ERD:            matrix(grid.Ny, grid.Nx),
		LowReliability: m.sc.LowReliability(),
	}

	// arrival depends only on downwind distance
	arrival := make([]float64, grid.Nx)
	bio := make([]float64, grid.Nx)
	for i, x := range f.X {
		arrival[i] = m.ArrivalTime(x)
		b, err := m.Bio(arrival[i])
		if err != nil {
			return nil, err
		}
		bio[i] = b
	}

	for j, y := range f.Y {
		for i, x := range f.X {
			d1 := m.DoseRateH1(x, y)
			f.Deposition[j][i] = d1
			f.Arrival[j][i] = arrival[i]
			f.Dose[j][i] = Accumulated(d1, arrival[i], m.sc.Horizon)
			f.ERD[j][i] = d1 * bio[i]
		}
	}

	cells, err := m.cells(f.X, f.Y)
	if err != nil {
		return nil, err
	}
	f.Cells = cells
	return f, nil
}

func (f *Field) Nx() int { return len(f.X) }
func (f *Field) Ny() int { return len(f.Y) }

// CellArea is the area in m² represented by one node.
func (f *Field) CellArea() float64 { return f.Grid.CellArea() }

// TotalDeposit is the activity deposited on the cells of the grid,
// (R/h)·m². It is bounded by Source.Activity.
func (f *Field) TotalDeposit() float64 {
	var sum float64
	for _, row := range f.Cells.Deposition {
		sum += floats.Sum(row)
	}
	return sum
}

// DoseAt is the dose accumulated at node (i, j) by t hours.
func (f *Field) DoseAt(i, j int, t float64) float64 {
	return Accumulated(f.Deposition[j][i], f.Arrival[j][i], math.Min(t, f.Scenario.Horizon))
}

// Quantity returns the matrix for a quantity name.
func (f *Field) Quantity(name string) ([][]float64, error) {
	switch name {
	case QuantityDeposition:
		return f.Deposition, nil
	case QuantityArrival:
		return f.Arrival, nil
	case QuantityDose:
		return f.Dose, nil
	case QuantityERD:
		return f.ERD, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownQuantity, name)
}

// CellIntegral returns the cell integrals of a quantity. Arrival time has
// none.
func (f *Field) CellIntegral(name string) ([][]float64, error) {
	var c [][]float64
	switch name {
	case QuantityDeposition:
		c = f.Cells.Deposition
	case QuantityDose:
		c = f.Cells.Dose
	case QuantityERD:
		c = f.Cells.ERD
	case QuantityArrival:
		return nil, fmt.Errorf("%w: %q", ErrNoCellIntegral, name)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuantity, name)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %q not computed", ErrNoCellIntegral, name)
	}
	return c, nil
}

// Peak returns the largest value of q and its node.
func Peak(q [][]float64) (v float64, i, j int) {
	v = math.Inf(-1)
	for jj, row := range q {
		ii := floats.MaxIdx(row)
		if row[ii] > v {
			v, i, j = row[ii], ii, jj
		}
	}
	return v, i, j
}

// PeakDose returns the largest accumulated dose and its wind-frame position.
func (f *Field) PeakDose() (dose, x, y float64) {
	v, i, j := Peak(f.Dose)
	return v, f.X[i], f.Y[j]
}

// CrosswindIndex returns the row nearest crosswind offset y.
func (f *Field) CrosswindIndex(y float64) int {
	best := 0
	for j, yy := range f.Y {
		if math.Abs(yy-y) < math.Abs(f.Y[best]-y) {
			best = j
		}
	}
	return best
}

// Centerline returns the row of q nearest the wind axis.
func (f *Field) Centerline(q [][]float64) []float64 {
	row := q[f.CrosswindIndex(0)]
	return append([]float64(nil), row...)
}

// MapPoint converts node (i, j) to map coordinates.
func (f *Field) MapPoint(i, j int) r2.Vec {
	return f.Frame.ToMap(r2.Vec{X: f.X[i], Y: f.Y[j]})
}

// Extent returns the downwind and crosswind span of nodes where q exceeds
// threshold; ok is false when no node does.
func Extent(xs, ys []float64, q [][]float64, threshold float64) (dx, dy float64, ok bool) {
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for j, row := range q {
		for i, v := range row {
			if v <= threshold {
				continue
			}
			ok = true
			xmin, xmax = math.Min(xmin, xs[i]), math.Max(xmax, xs[i])
			ymin, ymax = math.Min(ymin, ys[j]), math.Max(ymax, ys[j])
		}
	}
	if !ok {
		return 0, 0, false
	}
	return xmax - xmin, ymax - ymin, true
}
