// Package metrics reduces sampled hazard fields to scalar figures.
package metrics

import "sort"

// Node is one grid node as a metric sees it.
type Node struct {
	Value    float64 // sampled value
	Area     float64 // ground area of the node's cell, m²
	Integral float64 // value integrated over the cell
}

// Metric accumulates one statistic over the nodes of a field.
type Metric interface {
	Name() string
	Observe(n Node)
	Value() float64
	Reset()
}

// Apply resets ms, feeds every node of values to each and returns the
// results keyed by name. Without cell integrals a node's integral is its
// value times cellArea, which can overshoot on coarse grids; use
// ApplyCells when the integrals are known.
func Apply(values [][]float64, cellArea float64, ms ...Metric) map[string]float64 {
	return ApplyCells(values, nil, cellArea, ms...)
}

// ApplyCells is Apply with the integral of every cell given in integrals,
// shaped like values.
func ApplyCells(values, integrals [][]float64, cellArea float64, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for j, row := range values {
		for i, v := range row {
			n := Node{Value: v, Area: cellArea, Integral: v * cellArea}
			if integrals != nil {
				n.Integral = integrals[j][i]
			}
			for _, m := range ms {
				m.Observe(n)
			}
		}
	}
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the keys of a result map in sorted order.
func Names(results map[string]float64) []string {
	names := make([]string, 0, len(results))
	for n := range results {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Standard is the metric set reported for a dose matrix.
func Standard(thresholds ...float64) []Metric {
	ms := []Metric{NewPeak(), NewIntegral(), NewCoverage(0)}
	for _, th := range thresholds {
		ms = append(ms, NewAreaAbove(th))
	}
	return ms
}
