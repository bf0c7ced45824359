package fallout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/effectsim/internal/graph"
	"github.com/san-kum/effectsim/internal/units"
)

// reference time of the arrival-time fit, h
const t1 = 1.0

// Model is the WSEG-10 deposition model for one scenario. Internally it
// works in the model's native units: miles, mph, kilofeet and hours.
// A Model is immutable and safe for concurrent use.
type Model struct {
	sc    Scenario
	src   SourceTerm
	frame Frame
	bio   *graph.Table

	wind  float64 // mph
	shear float64 // mph/kft
	sh    float64 // vertical cloud thickness, kft

	l0, sx, sx2 float64
	l, n, a1    float64
	gammaN      float64
	calm        bool
}

// New validates sc, checks that the burst is a surface or near-surface
// burst and derives the source term from tabs.
func New(sc Scenario, tabs Tables) (*Model, error) {
	sc = sc.WithDefaults()
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if err := tabs.validate(); err != nil {
		return nil, err
	}
	if err := checkApplicability(sc); err != nil {
		return nil, err
	}
	src, err := LookupSource(tabs.SourceFor(sc.YieldKt), sc.YieldKt, sc.FissionFraction)
	if err != nil {
		return nil, err
	}

	m := &Model{
		sc:    sc,
		src:   src,
		frame: NewFrame(sc.GroundZero, sc.Wind.Direction),
		bio:   tabs.Bio,
		wind:  units.MpsToMph(sc.Wind.Speed),
		shear: units.ShearToNative(sc.Shear),
	}

	ns := src.native
	s02 := ns.s0 * ns.s0
	m.sh = 0.18 * ns.hc
	m.l0 = m.wind * ns.tc
	l02 := m.l0 * m.l0

	m.sx2 = s02 * (l02 + 8*s02) / (l02 + 2*s02)
	m.sx = math.Sqrt(m.sx2)
	m.l = math.Sqrt(l02 + 2*m.sx2)
	m.n = (sc.FissionFraction*l02 + m.sx2) / (l02 + 0.5*m.sx2)
	m.gammaN = math.Gamma(1 + 1/m.n)
	m.a1 = 1 / (1 + 0.001*ns.hc*m.wind/ns.s0)
	m.calm = m.wind == 0
	return m, nil
}

func (m *Model) Scenario() Scenario { return m.sc }
func (m *Model) Source() SourceTerm { return m.src }
func (m *Model) Frame() Frame       { return m.frame }

// DownwindSigma is the along-wind spread of the cloud, m.
func (m *Model) DownwindSigma() float64 { return units.MilesToMeters(m.sx) }

// TransportLength is the distance the wind carries the cloud during one
// time constant, m.
func (m *Model) TransportLength() float64 { return units.MilesToMeters(m.l0) }

func normalPDF(x, sigma float64) float64 {
	z := x / sigma
	return math.Exp(-0.5*z*z) / (math.Sqrt(2*math.Pi) * sigma)
}

// DoseRateH1 is the dose rate at H+1 in R/h of the activity deposited at
// wind-frame point (x, y), in metres. It serves as the deposition density.
func (m *Model) DoseRateH1(x, y float64) float64 {
	xm, ym := units.MetersToMiles(x), units.MetersToMiles(y)
	if m.calm {
		return m.src.native.activity * normalPDF(xm, m.sx) * normalPDF(ym, m.sx)
	}
	fx, a2, sy := m.downwind(xm)
	fy := math.Exp(-0.5*math.Pow(ym/(a2*sy), 2)) / (math.Sqrt(2*math.Pi) * sy)
	return fx * fy
}

// downwind returns, at downwind distance xm miles, the activity per mile
// of the along-wind profile, the crosswind attenuation a2 and the
// crosswind spread sy in miles. The crosswind profile integrates to a2.
func (m *Model) downwind(xm float64) (fx, a2, sy float64) {
	ns := m.src.native

	g := math.Exp(-math.Pow(math.Abs(xm)/m.l, m.n)) / (m.l * m.gammaN)
	phi := distuv.UnitNormal.CDF((m.l0 / m.l) * xm / (m.sx * m.a1))
	fx = ns.activity * phi * g

	// crosswind spread grows with distance and with shear
	d := xm + 2*m.sx
	s02 := ns.s0 * ns.s0
	ts := ns.tc * m.sh * m.shear
	l2 := m.l * m.l
	sy2 := s02 +
		8*math.Abs(d)*s02/m.l +
		2*math.Pow(m.sx*ts, 2)/l2 +
		math.Pow(d*m.l0*ts, 2)/(l2*l2)
	sy = math.Sqrt(sy2)

	a2 = 1 / (1 + (0.001*ns.hc*m.wind/ns.s0)*(1-distuv.UnitNormal.CDF(2*xm/m.wind)))
	return fx, a2, sy
}

// ArrivalTime is the time in hours fallout starts to arrive at downwind
// distance x metres.
func (m *Model) ArrivalTime(x float64) float64 {
	return m.arrival(units.MetersToMiles(x))
}

func (m *Model) arrival(xm float64) float64 {
	tc := m.src.native.tc
	l02 := m.l0 * m.l0
	q := l02 + 0.5*m.sx2
	d := xm + 2*m.sx
	return math.Sqrt(0.25 + l02*d*d*tc*tc/(m.l*m.l*q) + 2*m.sx2*t1*t1/q)
}

// DoseAt is the dose in R accumulated at (x, y) by time t hours, with t
// capped at the scenario horizon.
func (m *Model) DoseAt(x, y, t float64) float64 {
	return Accumulated(m.DoseRateH1(x, y), m.ArrivalTime(x), math.Min(t, m.sc.Horizon))
}

// Dose is the dose accumulated at (x, y) through the horizon.
func (m *Model) Dose(x, y float64) float64 {
	return m.DoseAt(x, y, m.sc.Horizon)
}

// Bio is the 30-day equivalent residual dose per unit H+1 dose rate for
// fallout arriving at the given time. Arrivals at or after 30 days give 0.
func (m *Model) Bio(arrival float64) (float64, error) {
	if arrival >= DefaultHorizon {
		return 0, nil
	}
	b, err := m.bio.Interpolate(arrival)
	if err != nil {
		return 0, stageErr(StageDecay, err)
	}
	return b, nil
}

// ERD is the 30-day equivalent residual dose in R at (x, y).
func (m *Model) ERD(x, y float64) (float64, error) {
	b, err := m.Bio(m.ArrivalTime(x))
	if err != nil {
		return 0, err
	}
	return m.DoseRateH1(x, y) * b, nil
}

// Point is the model evaluated at one location.
type Point struct {
	X, Y       float64 // wind frame, m
	DoseRateH1 float64 // R/h
	Arrival    float64 // h
	Dose       float64 // R through the horizon
	ERD        float64 // R
}

// At evaluates every quantity at wind-frame point (x, y).
func (m *Model) At(x, y float64) (Point, error) {
	p := Point{X: x, Y: y, DoseRateH1: m.DoseRateH1(x, y), Arrival: m.ArrivalTime(x)}
	p.Dose = Accumulated(p.DoseRateH1, p.Arrival, m.sc.Horizon)
	b, err := m.Bio(p.Arrival)
	if err != nil {
		return Point{}, err
	}
	p.ERD = p.DoseRateH1 * b
	return p, nil
}

// AtMap evaluates at a map point (east, north), in metres.
func (m *Model) AtMap(p r2.Vec) (Point, error) {
	w := m.frame.ToWind(p)
	return m.At(w.X, w.Y)
}
