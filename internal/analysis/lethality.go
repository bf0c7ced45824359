package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Lethality is a lognormal dose-response curve for unsheltered people.
type Lethality struct {
	LD50  float64 // R
	Sigma float64 // log-space standard deviation
	// Certain is the dose above which death is taken as certain; zero
	// disables the cut-off.
	Certain float64
}

// DefaultLethality gives LD10 263 R, LD50 450 R and LD95 900 R.
func DefaultLethality() Lethality {
	return Lethality{LD50: 450, Sigma: 0.42, Certain: 2000}
}

func (l Lethality) dist() distuv.LogNormal {
	return distuv.LogNormal{Mu: math.Log(l.LD50), Sigma: l.Sigma}
}

// Fraction is the probability of death after dose R.
func (l Lethality) Fraction(dose float64) float64 {
	if !(dose > 0) {
		return 0
	}
	if l.Certain > 0 && dose >= l.Certain {
		return 1
	}
	return l.dist().CDF(dose)
}

// LD returns the dose that kills fraction p.
func (l Lethality) LD(p float64) float64 {
	return l.dist().Quantile(p)
}

// FractionField maps Fraction over a dose matrix.
func (l Lethality) FractionField(dose [][]float64) [][]float64 {
	out := make([][]float64, len(dose))
	for j, row := range dose {
		out[j] = make([]float64, len(row))
		for i, d := range row {
			out[j][i] = l.Fraction(d)
		}
	}
	return out
}

// ExpectedFatalities sums Fraction over a dose matrix whose nodes each
// stand for cellArea m² at a uniform density in people per km².
func (l Lethality) ExpectedFatalities(dose [][]float64, cellArea, density float64) float64 {
	perCell := cellArea / 1e6 * density
	var sum float64
	for _, row := range dose {
		for _, d := range row {
			sum += l.Fraction(d)
		}
	}
	return sum * perCell
}
