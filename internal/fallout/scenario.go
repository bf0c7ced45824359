package fallout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/effectsim/internal/graph"
)

const (
	// DefaultHorizon is the 30-day integration window in hours.
	DefaultHorizon = 720.0

	DefaultFissionFraction = 1.0

	// ReliableYieldKt is the yield below which results are flagged.
	ReliableYieldKt = 100.0

	// RegimeSplitKt is the largest yield served by the low-yield table.
	RegimeSplitKt = 10.0

	// fireball contact envelope, m per kt^0.4
	contactCoefficient = 55.0
	contactExponent    = 0.4
)

// Wind is the effective, vertically averaged transport wind.
type Wind struct {
	Speed     float64 // m/s
	Direction float64 // degrees clockwise from north the wind blows from
}

// Scenario is one burst in SI units.
type Scenario struct {
	YieldKt         float64
	FissionFraction float64 // zero means DefaultFissionFraction
	HeightOfBurst   float64 // m; zero is a surface burst
	GroundZero      r2.Vec  // m, east and north
	Wind            Wind
	Shear           float64 // (m/s)/km
	Horizon         float64 // h; zero means DefaultHorizon
}

// WithDefaults fills zero-valued optional fields.
func (s Scenario) WithDefaults() Scenario {
	if s.FissionFraction == 0 {
		s.FissionFraction = DefaultFissionFraction
	}
	if s.Horizon == 0 {
		s.Horizon = DefaultHorizon
	}
	return s
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks the scenario after defaults are applied.
func (s Scenario) Validate() error {
	s = s.WithDefaults()
	switch {
	case !(s.YieldKt > 0) || !finite(s.YieldKt):
		return &ParameterError{"yield", s.YieldKt, "must be positive and finite"}
	case !(s.FissionFraction > 0 && s.FissionFraction <= 1):
		return &ParameterError{"fission_fraction", s.FissionFraction, "must be in (0, 1]"}
	case !(s.HeightOfBurst >= 0) || !finite(s.HeightOfBurst):
		return &ParameterError{"height_of_burst", s.HeightOfBurst, "must be non-negative and finite"}
	case !(s.Wind.Speed >= 0) || !finite(s.Wind.Speed):
		return &ParameterError{"wind_speed", s.Wind.Speed, "must be non-negative and finite"}
	case !finite(s.Wind.Direction):
		return &ParameterError{"wind_direction", s.Wind.Direction, "must be finite"}
	case !(s.Shear >= 0) || !finite(s.Shear):
		return &ParameterError{"shear", s.Shear, "must be non-negative and finite"}
	case s.Wind.Speed == 0 && s.Shear != 0:
		return &ParameterError{"shear", s.Shear, "undefined without a transport wind"}
	case !(s.Horizon > 0) || !finite(s.Horizon):
		return &ParameterError{"horizon", s.Horizon, "must be positive and finite"}
	case !finite(s.GroundZero.X) || !finite(s.GroundZero.Y):
		return &ParameterError{"ground_zero", math.NaN(), "must be finite"}
	}
	return nil
}

// LowReliability reports yields below the model's calibrated range.
func (s Scenario) LowReliability() bool {
	return s.YieldKt < ReliableYieldKt
}

// ContactHeight is the highest burst, in metres, whose fireball still
// reaches the ground.
func ContactHeight(yieldKt float64) float64 {
	return contactCoefficient * math.Pow(yieldKt, contactExponent)
}

// surfaceBurst couples the admissible height of burst to yield.
var surfaceBurst = graph.Coupled{
	Rect: graph.Rect{
		{Axis: "yield_kt", Min: 0, Max: math.Inf(1)},
		{Axis: "height_of_burst_m", Min: 0, Max: math.Inf(1)},
	},
	Limits: []graph.Limit{{
		Axis:  1,
		Bound: graph.Upper,
		At:    func(c []float64) float64 { return ContactHeight(c[0]) },
	}},
}

func checkApplicability(s Scenario) error {
	return stageErr(StageApplicability,
		graph.Guard("wseg10/applicability", surfaceBurst, []float64{s.YieldKt, s.HeightOfBurst}))
}

// Grid is a rectangular node lattice in the wind frame: x downwind of
// ground zero, y crosswind to the left of the wind, both in metres.
type Grid struct {
	DownwindMin, DownwindMax   float64
	CrosswindMin, CrosswindMax float64
	Nx, Ny                     int
}

func (g Grid) Validate() error {
	switch {
	case g.Nx < 2:
		return &ParameterError{"grid_nx", float64(g.Nx), "need at least 2 nodes"}
	case g.Ny < 2:
		return &ParameterError{"grid_ny", float64(g.Ny), "need at least 2 nodes"}
	case !finite(g.DownwindMin) || !finite(g.DownwindMax) || !(g.DownwindMax > g.DownwindMin):
		return &ParameterError{"grid_downwind", g.DownwindMax - g.DownwindMin, "span must be positive and finite"}
	case !finite(g.CrosswindMin) || !finite(g.CrosswindMax) || !(g.CrosswindMax > g.CrosswindMin):
		return &ParameterError{"grid_crosswind", g.CrosswindMax - g.CrosswindMin, "span must be positive and finite"}
	}
	return nil
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Xs returns the downwind node coordinates.
func (g Grid) Xs() []float64 { return linspace(g.DownwindMin, g.DownwindMax, g.Nx) }

// Ys returns the crosswind node coordinates.
func (g Grid) Ys() []float64 { return linspace(g.CrosswindMin, g.CrosswindMax, g.Ny) }

// CellArea is the area in m² each node represents.
func (g Grid) CellArea() float64 {
	dx := (g.DownwindMax - g.DownwindMin) / float64(g.Nx-1)
	dy := (g.CrosswindMax - g.CrosswindMin) / float64(g.Ny-1)
	return dx * dy
}

// Symmetric returns a grid centred on ground zero crosswind, reaching
// upwind to a fraction of the downwind extent.
func Symmetric(downwind, crosswind float64, nx, ny int) Grid {
	return Grid{
		DownwindMin:  -downwind / 10,
		DownwindMax:  downwind,
		CrosswindMin: -crosswind,
		CrosswindMax: crosswind,
		Nx:           nx,
		Ny:           ny,
	}
}
