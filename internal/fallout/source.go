package fallout

import (
	"github.com/san-kum/effectsim/internal/graph"
	"github.com/san-kum/effectsim/internal/tables"
	"github.com/san-kum/effectsim/internal/units"
)

// Column names of the source-term tables.
const (
	ColCloudHeight  = "cloud_height_kft"
	ColCloudSigma   = "sigma0_mi"
	ColTimeConstant = "time_constant_h"
)

// activity per megaton of fission yield, (R/h at H+1)·mi²
const activityPerMt = 2e6

// TableSource resolves dense tables by id; *tables.Catalog implements it.
type TableSource interface {
	Table(id string) (*graph.Table, error)
}

// Tables are the lookups the model consults.
type Tables struct {
	SourceLow  *graph.Table
	SourceHigh *graph.Table
	Bio        *graph.Table
}

// LoadTables resolves the shipped WSEG-10 tables from src.
func LoadTables(src TableSource) (Tables, error) {
	var t Tables
	var err error
	if t.SourceLow, err = src.Table(tables.WSEG10SourceLow); err != nil {
		return Tables{}, err
	}
	if t.SourceHigh, err = src.Table(tables.WSEG10SourceHigh); err != nil {
		return Tables{}, err
	}
	if t.Bio, err = src.Table(tables.WSEG10Bio); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// SourceFor picks the regime table serving a yield.
func (t Tables) SourceFor(yieldKt float64) *graph.Table {
	if yieldKt <= RegimeSplitKt {
		return t.SourceLow
	}
	return t.SourceHigh
}

func (t Tables) validate() error {
	if t.SourceLow == nil || t.SourceHigh == nil || t.Bio == nil {
		return ErrIncompleteTables
	}
	return nil
}

// SourceTerm is the initial cloud and total activity derived from yield.
type SourceTerm struct {
	Table        string
	YieldKt      float64
	CloudHeight  float64 // m
	CloudSigma   float64 // m, initial cloud radius sigma0
	TimeConstant float64 // h
	Activity     float64 // (R/h at H+1)·m²

	native nativeSource
}

type nativeSource struct {
	hc, s0, tc float64 // kft, mi, h
	activity   float64 // (R/h)·mi²
}

// LookupSource reads the source term for yieldKt from one regime table.
// A yield outside the table fails with a StageError on StageSourceTerm.
func LookupSource(t *graph.Table, yieldKt, fissionFraction float64) (SourceTerm, error) {
	hc, err := t.InterpolateColumn(ColCloudHeight, yieldKt)
	if err != nil {
		return SourceTerm{}, stageErr(StageSourceTerm, err)
	}
	s0, err := t.InterpolateColumn(ColCloudSigma, yieldKt)
	if err != nil {
		return SourceTerm{}, stageErr(StageSourceTerm, err)
	}
	tc, err := t.InterpolateColumn(ColTimeConstant, yieldKt)
	if err != nil {
		return SourceTerm{}, stageErr(StageSourceTerm, err)
	}

	n := nativeSource{
		hc:       hc,
		s0:       s0,
		tc:       tc,
		activity: units.KtToMt(yieldKt) * activityPerMt * fissionFraction,
	}
	return SourceTerm{
		Table:        t.ID(),
		YieldKt:      yieldKt,
		CloudHeight:  units.KilofeetToMeters(hc),
		CloudSigma:   units.MilesToMeters(s0),
		TimeConstant: tc,
		Activity:     units.SquareMilesToSquareMeters(n.activity),
		native:       n,
	}, nil
}
