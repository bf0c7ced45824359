package graph

import (
	"errors"
	"math"
	"testing"
)

func mustTable(t *testing.T, id string, axes []Axis, cols []Column, opts ...Option) *Table {
	t.Helper()
	tab, err := New(id, axes, cols, opts...)
	if err != nil {
		t.Fatalf("New(%s): %v", id, err)
	}
	return tab
}

func grid2D(t *testing.T) *Table {
	// v = 10*x + y on x in {0,1,2}, y in {0,10}
	return mustTable(t, "plane",
		[]Axis{
			{Name: "x", Points: []float64{0, 1, 2}},
			{Name: "y", Points: []float64{0, 10}},
		},
		[]Column{
			{Name: "v", Values: []float64{0, 10, 10, 20, 20, 30}},
			{Name: "w", Values: []float64{1, 1, 2, 2, 3, 3}},
		},
	)
}

func TestInterpolateExactHits(t *testing.T) {
	tab := mustTable(t, "curve",
		[]Axis{{Name: "x", Points: []float64{0.1, 0.3, 0.7, 1.9}}},
		[]Column{{Name: "y", Values: []float64{0.123456789, 2.5e-7, 31.4159, 1e9}}},
	)

	n := 0
	tab.Each(func(coords, values []float64) {
		got, err := tab.Interpolate(coords...)
		if err != nil {
			t.Fatalf("unexpected error at %v: %v", coords, err)
		}
		if got != values[0] {
			t.Errorf("expected stored %v at %v, got %v", values[0], coords, got)
		}
		n++
	})
	if n != 4 {
		t.Errorf("expected 4 samples visited, got %d", n)
	}
}

func TestInterpolateExactHitsLogColumn(t *testing.T) {
	// exp(log(v)) is not always v; exact hits must skip the transform
	vals := []float64{0.1, 0.3, 0.7, 1.9, 123.456}
	tab := mustTable(t, "logcol",
		[]Axis{{Name: "t", Scale: Log, Points: []float64{0.5, 1, 2, 4, 8}}},
		[]Column{{Name: "v", Scale: Log, Values: vals}},
	)
	for i, x := range []float64{0.5, 1, 2, 4, 8} {
		got, err := tab.Interpolate(x)
		if err != nil {
			t.Fatal(err)
		}
		if got != vals[i] {
			t.Errorf("expected %v, got %v", vals[i], got)
		}
	}
}

func TestInterpolateLinear2D(t *testing.T) {
	tab := grid2D(t)
	tests := []struct {
		x, y, want float64
	}{
		{0, 0, 0},
		{0.5, 0, 5},
		{1.5, 5, 20},
		{2, 10, 30},
		{1, 2.5, 12.5},
		{0.25, 7.5, 10},
	}
	for _, tt := range tests {
		got, err := tab.Interpolate(tt.x, tt.y)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("(%g, %g): expected %g, got %g", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestInterpolateColumns(t *testing.T) {
	tab := grid2D(t)

	w, err := tab.InterpolateColumn("w", 1.5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(w-2.5) > 1e-12 {
		t.Errorf("expected 2.5, got %g", w)
	}

	all, err := tab.InterpolateAll(0.5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || math.Abs(all[0]-15) > 1e-12 || math.Abs(all[1]-1.5) > 1e-12 {
		t.Errorf("expected [15 1.5], got %v", all)
	}

	if _, err := tab.InterpolateColumn("missing", 1, 1); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestInterpolateLogAxis(t *testing.T) {
	// y = log10(x) is a straight line on a log axis
	tab := mustTable(t, "decade",
		[]Axis{{Name: "x", Scale: Log, Points: []float64{1, 10, 100}}},
		[]Column{{Name: "y", Values: []float64{0, 1, 2}}},
	)
	for _, x := range []float64{2, 3.1622776601683795, 50} {
		got, err := tab.Interpolate(x)
		if err != nil {
			t.Fatal(err)
		}
		if want := math.Log10(x); math.Abs(got-want) > 1e-12 {
			t.Errorf("x=%g: expected %g, got %g", x, want, got)
		}
	}
}

func TestInterpolateLogLog(t *testing.T) {
	// power laws are exact in log-log space
	xs := []float64{1, 2, 4, 8, 16}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 3 * math.Pow(x, -1.2)
	}
	tab := mustTable(t, "power",
		[]Axis{{Name: "t", Scale: Log, Points: xs}},
		[]Column{{Name: "rate", Scale: Log, Values: ys}},
	)
	for _, x := range []float64{1.3, 5, 11.7} {
		got, err := tab.Interpolate(x)
		if err != nil {
			t.Fatal(err)
		}
		want := 3 * math.Pow(x, -1.2)
		if math.Abs(got-want)/want > 1e-12 {
			t.Errorf("t=%g: expected %g, got %g", x, want, got)
		}
	}
}

func TestInterpolateMonotone(t *testing.T) {
	xs := []float64{0, 0.5, 1, 3, 3.2, 7}
	ys := []float64{-4, -3.9, 0, 0.001, 12, 12.5}
	tab := mustTable(t, "mono",
		[]Axis{{Name: "x", Points: xs}},
		[]Column{{Name: "y", Values: ys}},
	)

	prev := math.Inf(-1)
	for i := 0; i <= 7000; i++ {
		x := float64(i) / 1000
		got, err := tab.Interpolate(x)
		if err != nil {
			t.Fatalf("x=%g: %v", x, err)
		}
		if got < prev-1e-12 {
			t.Fatalf("not monotone at x=%g: %g after %g", x, got, prev)
		}
		prev = got
	}

	for k := 1; k < len(xs); k++ {
		mid := (xs[k-1] + xs[k]) / 2
		got, _ := tab.Interpolate(mid)
		if got < ys[k-1] || got > ys[k] {
			t.Errorf("overshoot between samples %d and %d: %g not in [%g, %g]", k-1, k, got, ys[k-1], ys[k])
		}
	}
}

func TestInterpolateOutOfDomain(t *testing.T) {
	tab := grid2D(t)
	tests := []struct {
		name  string
		x, y  float64
		axis  string
		bound Bound
		limit float64
	}{
		{"below x", -0.001, 5, "x", Lower, 0},
		{"above x", 2.0000001, 5, "x", Upper, 2},
		{"below y", 1, -1, "y", Lower, 0},
		{"above y", 1, 10.5, "y", Upper, 10},
		{"nan", math.NaN(), 5, "x", Lower, 0},
		{"inf", 1, math.Inf(1), "y", Upper, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tab.Interpolate(tt.x, tt.y)
			if !errors.Is(err, ErrOutOfDomain) {
				t.Fatalf("expected ErrOutOfDomain, got %v", err)
			}
			var ood *OutOfDomainError
			if !errors.As(err, &ood) {
				t.Fatalf("expected *OutOfDomainError, got %T", err)
			}
			if ood.Table != "plane" {
				t.Errorf("expected table plane, got %q", ood.Table)
			}
			if ood.Axis != tt.axis {
				t.Errorf("expected axis %s, got %s", tt.axis, ood.Axis)
			}
			if ood.Bound != tt.bound {
				t.Errorf("expected %s bound, got %s", tt.bound, ood.Bound)
			}
			if ood.Limit != tt.limit {
				t.Errorf("expected limit %g, got %g", tt.limit, ood.Limit)
			}
		})
	}
}

func TestInterpolateDimensionMismatch(t *testing.T) {
	tab := grid2D(t)
	if _, err := tab.Interpolate(1); !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}
	if _, err := tab.Interpolate(1, 2, 3); !errors.Is(err, ErrDimension) {
		t.Errorf("expected ErrDimension, got %v", err)
	}
}

func TestNewRejectsBadData(t *testing.T) {
	tests := []struct {
		name string
		axes []Axis
		cols []Column
	}{
		{"no axes", nil, []Column{{Name: "v", Values: []float64{1}}}},
		{"no columns", []Axis{{Name: "x", Points: []float64{0, 1}}}, nil},
		{"duplicate point", []Axis{{Name: "x", Points: []float64{0, 1, 1}}}, []Column{{Name: "v", Values: []float64{1, 2, 3}}}},
		{"decreasing", []Axis{{Name: "x", Points: []float64{0, 2, 1}}}, []Column{{Name: "v", Values: []float64{1, 2, 3}}}},
		{"single point", []Axis{{Name: "x", Points: []float64{0}}}, []Column{{Name: "v", Values: []float64{1}}}},
		{"log axis zero", []Axis{{Name: "x", Scale: Log, Points: []float64{0, 1}}}, []Column{{Name: "v", Values: []float64{1, 2}}}},
		{"log column negative", []Axis{{Name: "x", Points: []float64{0, 1}}}, []Column{{Name: "v", Scale: Log, Values: []float64{1, -2}}}},
		{"short column", []Axis{{Name: "x", Points: []float64{0, 1}}}, []Column{{Name: "v", Values: []float64{1}}}},
		{"nan value", []Axis{{Name: "x", Points: []float64{0, 1}}}, []Column{{Name: "v", Values: []float64{1, math.NaN()}}}},
		{"unnamed axis", []Axis{{Points: []float64{0, 1}}}, []Column{{Name: "v", Values: []float64{1, 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("bad", tt.axes, tt.cols); !errors.Is(err, ErrInvalidTable) {
				t.Errorf("expected ErrInvalidTable, got %v", err)
			}
		})
	}
}

func TestTableImmutable(t *testing.T) {
	pts := []float64{0, 1}
	vals := []float64{5, 7}
	tab := mustTable(t, "copy",
		[]Axis{{Name: "x", Points: pts}},
		[]Column{{Name: "v", Values: vals}},
	)
	pts[1] = 100
	vals[0] = -1

	got, err := tab.Interpolate(1)
	if err != nil {
		t.Fatal(err)
	}
	if got != 7 {
		t.Errorf("expected 7, got %g", got)
	}
	axes := tab.Axes()
	axes[0].Points[0] = 42
	if tab.Axes()[0].Points[0] != 0 {
		t.Error("Axes must return a copy")
	}
}

func TestRoundTrip3D(t *testing.T) {
	axes := []Axis{
		{Name: "a", Points: []float64{1, 2}},
		{Name: "b", Scale: Log, Points: []float64{0.1, 1, 10}},
		{Name: "c", Points: []float64{-1, 0, 1, 2}},
	}
	vals := make([]float64, 2*3*4)
	for i := range vals {
		vals[i] = math.Sqrt(float64(i)+0.5) * 1.1
	}
	tab := mustTable(t, "cube", axes, []Column{{Name: "v", Values: vals}})

	i := 0
	tab.Each(func(coords, values []float64) {
		if values[0] != vals[i] {
			t.Errorf("sample %d: expected %v, got %v", i, vals[i], values[0])
		}
		got, err := tab.Interpolate(coords...)
		if err != nil {
			t.Fatalf("sample %d at %v: %v", i, coords, err)
		}
		if got != vals[i] {
			t.Errorf("sample %d at %v: expected %v, got %v", i, coords, vals[i], got)
		}
		i++
	})
	if i != len(vals) {
		t.Errorf("expected %d samples, got %d", len(vals), i)
	}
}

func TestPartiallyExactQuery(t *testing.T) {
	tab := grid2D(t)
	// x on a sample, y between: only y blends
	got, err := tab.Interpolate(1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-14) > 1e-12 {
		t.Errorf("expected 14, got %g", got)
	}
}

func TestParseScale(t *testing.T) {
	for in, want := range map[string]Scale{"": Linear, "linear": Linear, "LOG": Log, "log": Log} {
		got, err := ParseScale(in)
		if err != nil || got != want {
			t.Errorf("ParseScale(%q): expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseScale("cubic"); err == nil {
		t.Error("expected error for unknown scale")
	}
}
