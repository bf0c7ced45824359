package graph

import (
	"errors"
	"math"
	"testing"
)

func yieldRangeDomain() Coupled {
	// range limit grows with the square root of yield
	return Coupled{
		Rect: Rect{
			{Axis: "yield", Min: 1, Max: 1000},
			{Axis: "range", Min: 0, Max: 10000},
		},
		Limits: []Limit{{
			Axis:  1,
			Bound: Upper,
			At:    func(c []float64) float64 { return 1000 * math.Sqrt(c[0]) },
		}},
	}
}

func TestRectCheck(t *testing.T) {
	r := Rect{{Axis: "a", Min: 0, Max: 1}, {Axis: "b", Min: -5, Max: 5}}
	if err := r.Check([]float64{0, 5}); err != nil {
		t.Errorf("expected bounds inclusive, got %v", err)
	}
	err := r.Check([]float64{0.5, 5.5})
	var ood *OutOfDomainError
	if !errors.As(err, &ood) || ood.Axis != "b" || ood.Index != 1 || ood.Bound != Upper {
		t.Errorf("expected upper violation on b, got %v", err)
	}
}

func TestCoupledCheck(t *testing.T) {
	d := yieldRangeDomain()
	tests := []struct {
		name  string
		c     []float64
		ok    bool
		axis  string
		limit float64
	}{
		{"inside", []float64{4, 1999}, true, "", 0},
		{"on coupled limit", []float64{4, 2000}, true, "", 0},
		{"above coupled limit", []float64{4, 2001}, false, "range", 2000},
		{"large yield allows more", []float64{1000, 9999}, true, "", 0},
		{"outer rect first", []float64{0.5, 10}, false, "yield", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Guard("coupled", d, tt.c)
			if tt.ok {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			var ood *OutOfDomainError
			if !errors.As(err, &ood) {
				t.Fatalf("expected *OutOfDomainError, got %v", err)
			}
			if ood.Axis != tt.axis {
				t.Errorf("expected axis %s, got %s", tt.axis, ood.Axis)
			}
			if math.Abs(ood.Limit-tt.limit) > 1e-9 {
				t.Errorf("expected limit %g, got %g", tt.limit, ood.Limit)
			}
			if ood.Table != "coupled" {
				t.Errorf("expected Guard to stamp table name, got %q", ood.Table)
			}
		})
	}
}

func TestTableWithCoupledDomain(t *testing.T) {
	tab := mustTable(t, "coupled-table",
		[]Axis{
			{Name: "yield", Scale: Log, Points: []float64{1, 1000}},
			{Name: "range", Points: []float64{0, 10000}},
		},
		[]Column{{Name: "v", Values: []float64{0, 1, 2, 3}}},
		WithDomain(yieldRangeDomain()),
	)

	if _, err := tab.Interpolate(1, 500); err != nil {
		t.Errorf("expected in-domain query to succeed, got %v", err)
	}
	// inside the sampled rectangle but beyond the coupled limit
	_, err := tab.Interpolate(1, 5000)
	var ood *OutOfDomainError
	if !errors.As(err, &ood) || ood.Axis != "range" || ood.Bound != Upper {
		t.Errorf("expected coupled range violation, got %v", err)
	}
}

func TestAllIntersects(t *testing.T) {
	d := All(
		Rect{{Axis: "x", Min: 0, Max: 10}},
		nil,
		Rect{{Axis: "x", Min: 2, Max: 20}},
	)
	if d.Dims() != 1 {
		t.Fatalf("expected 1 dim, got %d", d.Dims())
	}
	if err := d.Check([]float64{5}); err != nil {
		t.Errorf("expected 5 valid, got %v", err)
	}
	if err := d.Check([]float64{1}); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("expected 1 rejected by second domain, got %v", err)
	}
	if err := d.Check([]float64{15}); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("expected 15 rejected by first domain, got %v", err)
	}
}

func TestOutOfDomainErrorMessage(t *testing.T) {
	e := &OutOfDomainError{Table: "t", Axis: "yield_kt", Value: 10.5, Limit: 10, Bound: Upper}
	want := `graph: table "t": yield_kt = 10.5 is above upper bound 10`
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}
}
