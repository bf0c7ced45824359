package fallout

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/effectsim/internal/units"
)

const (
	cellOrder     = 8   // Gauss-Legendre nodes per downwind piece
	maxCellPieces = 512 // downwind pieces per side of ground zero
)

// CellIntegrals hold each quantity integrated over the cell of every node.
// A cell reaches halfway to the neighbouring nodes and half a spacing past
// the edge of the grid, so cells never overlap and the deposition
// integrals sum to at most the source activity.
type CellIntegrals struct {
	Deposition [][]float64 // (R/h at H+1)·m²
	Dose       [][]float64 // R·m²
	ERD        [][]float64 // R·m²
}

// cellEdges returns the len(xs)+1 cell boundaries around the nodes xs.
func cellEdges(xs []float64) []float64 {
	n := len(xs)
	e := make([]float64, n+1)
	for i := 1; i < n; i++ {
		e[i] = 0.5 * (xs[i-1] + xs[i])
	}
	e[0] = xs[0] - 0.5*(xs[1]-xs[0])
	e[n] = xs[n-1] + 0.5*(xs[n-1]-xs[n-2])
	return e
}

// pieces splits [a, b] at zero, where the downwind profile has a cusp, and
// into parts no wider than h.
func pieces(a, b, h float64) [][2]float64 {
	var out [][2]float64
	split := func(lo, hi float64) {
		n := int(math.Ceil((hi - lo) / h))
		n = max(1, min(n, maxCellPieces))
		step := (hi - lo) / float64(n)
		for k := 0; k < n; k++ {
			out = append(out, [2]float64{lo + float64(k)*step, lo + float64(k+1)*step})
		}
		out[len(out)-1][1] = hi
	}
	if a < 0 && b > 0 {
		split(a, 0)
		split(0, b)
		return out
	}
	split(a, b)
	return out
}

// cells integrates the model over the cell of every node of xs and ys.
// Crosswind integrals are exact; downwind the profile is integrated with
// Gauss-Legendre quadrature over pieces of half a downwind sigma.
func (m *Model) cells(xs, ys []float64) (CellIntegrals, error) {
	nx, ny := len(xs), len(ys)
	c := CellIntegrals{
		Deposition: matrix(ny, nx),
		Dose:       matrix(ny, nx),
		ERD:        matrix(ny, nx),
	}

	xe, ye := cellEdges(xs), cellEdges(ys)
	for k := range xe {
		xe[k] = units.MetersToMiles(xe[k])
	}
	for k := range ye {
		ye[k] = units.MetersToMiles(ye[k])
	}
	mi2 := units.SquareMilesToSquareMeters(1)
	activity := m.src.native.activity

	// the crosswind fraction of a cell between edges ye[j] and ye[j+1]
	cdf := make([]float64, len(ye))
	crosswind := func(sigma float64) {
		for k, y := range ye {
			cdf[k] = distuv.UnitNormal.CDF(y / sigma)
		}
	}
	fraction := func(j int) float64 {
		return math.Max(0, cdf[j+1]-cdf[j])
	}

	if m.calm {
		arrival := m.arrival(0)
		bio, err := m.Bio(arrival)
		if err != nil {
			return CellIntegrals{}, err
		}
		acc := Accumulated(1, arrival, m.sc.Horizon)
		crosswind(m.sx)
		for i := 0; i < nx; i++ {
			px := math.Max(0, distuv.UnitNormal.CDF(xe[i+1]/m.sx)-distuv.UnitNormal.CDF(xe[i]/m.sx))
			for j := 0; j < ny; j++ {
				dep := activity * px * fraction(j) * mi2
				c.Deposition[j][i] = dep
				c.Dose[j][i] = dep * acc
				c.ERD[j][i] = dep * bio
			}
		}
		return c, nil
	}

	var leg quad.Legendre
	loc := make([]float64, cellOrder)
	wts := make([]float64, cellOrder)
	for i := 0; i < nx; i++ {
		for _, p := range pieces(xe[i], xe[i+1], m.sx/2) {
			leg.FixedLocations(loc, wts, p[0], p[1])
			for k, xm := range loc {
				fx, a2, sy := m.downwind(xm)
				if fx == 0 {
					continue
				}
				arrival := m.arrival(xm)
				bio, err := m.Bio(arrival)
				if err != nil {
					return CellIntegrals{}, err
				}
				acc := Accumulated(1, arrival, m.sc.Horizon)

				crosswind(a2 * sy)
				w := wts[k] * fx * a2 * mi2
				for j := 0; j < ny; j++ {
					dep := w * fraction(j)
					c.Deposition[j][i] += dep
					c.Dose[j][i] += dep * acc
					c.ERD[j][i] += dep * bio
				}
			}
		}
	}
	return c, nil
}
