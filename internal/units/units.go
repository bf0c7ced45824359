// Package units converts between the SI units used at the public boundary
// and the native units of the empirical models (miles, mph, kilofeet,
// megatons, kg/cm²).
package units

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownUnit = errors.New("units: unknown or incompatible unit")

const (
	MetersPerMile      = 1609.344
	MetersPerKilofoot  = 304.8
	MilesPerKilofoot   = 1 / 5.28
	MphPerMps          = 2.2369362920544025
	SquareMetersPerMi2 = MetersPerMile * MetersPerMile
	PascalsPerKgfCm2   = 98066.5
	RoentgenPerSievert = 100
	KtPerMt            = 1000

	// (m/s)/km to mph/kilofoot
	ShearMphKftPerSI = MphPerMps * MetersPerKilofoot / 1000
)

func KtToMt(kt float64) float64 { return kt / KtPerMt }
func MtToKt(mt float64) float64 { return mt * KtPerMt }

func MetersToMiles(m float64) float64  { return m / MetersPerMile }
func MilesToMeters(mi float64) float64 { return mi * MetersPerMile }

func MetersToKilofeet(m float64) float64   { return m / MetersPerKilofoot }
func KilofeetToMeters(kft float64) float64 { return kft * MetersPerKilofoot }

func MpsToMph(v float64) float64 { return v * MphPerMps }
func MphToMps(v float64) float64 { return v / MphPerMps }

// ShearToNative converts wind shear from (m/s)/km to mph/kilofoot.
func ShearToNative(s float64) float64 { return s * ShearMphKftPerSI }

// ShearFromNative converts wind shear from mph/kilofoot to (m/s)/km.
func ShearFromNative(s float64) float64 { return s / ShearMphKftPerSI }

func SquareMilesToSquareMeters(a float64) float64 { return a * SquareMetersPerMi2 }
func SquareMetersToSquareMiles(a float64) float64 { return a / SquareMetersPerMi2 }

func KgfCm2ToPascals(p float64) float64 { return p * PascalsPerKgfCm2 }
func PascalsToKgfCm2(p float64) float64 { return p / PascalsPerKgfCm2 }

func RoentgenToSievert(r float64) float64  { return r / RoentgenPerSievert }
func SievertToRoentgen(sv float64) float64 { return sv * RoentgenPerSievert }

type dimension int

const (
	length dimension = iota
	speed
	yield
	dose
	pressure
	area
)

type unit struct {
	dim dimension
	si  float64 // multiplier to the SI unit of its dimension
}

// SI bases: m, m/s, kt, R, Pa, m^2.
var table = map[string]unit{
	"m":      {length, 1},
	"km":     {length, 1000},
	"mi":     {length, MetersPerMile},
	"kft":    {length, MetersPerKilofoot},
	"ft":     {length, MetersPerKilofoot / 1000},
	"yd":     {length, 0.9144},
	"m/s":    {speed, 1},
	"km/h":   {speed, 1000.0 / 3600},
	"mph":    {speed, 1 / MphPerMps},
	"kt":     {yield, 1},
	"mt":     {yield, KtPerMt},
	"r":      {dose, 1},
	"sv":     {dose, RoentgenPerSievert},
	"rad":    {dose, 1},
	"gy":     {dose, RoentgenPerSievert},
	"pa":     {pressure, 1},
	"kpa":    {pressure, 1000},
	"psi":    {pressure, 6894.757293168},
	"kg/cm2": {pressure, PascalsPerKgfCm2},
	"bar":    {pressure, 1e5},
	"m2":     {area, 1},
	"km2":    {area, 1e6},
	"mi2":    {area, SquareMetersPerMi2},
}

// Convert converts v between two named units of the same dimension.
// Names are case-insensitive ("kT", "MT", "Sv" are accepted).
func Convert(v float64, from, to string) (float64, error) {
	f, ok := table[strings.ToLower(from)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	t, ok := table[strings.ToLower(to)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}
	if f.dim != t.dim {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrUnknownUnit, from, to)
	}
	return v * f.si / t.si, nil
}

// Units lists the accepted unit names.
func Units() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	return names
}
