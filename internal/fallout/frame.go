package fallout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Frame maps between map coordinates (east, north) and the wind frame
// centred at ground zero: x downwind, y crosswind to the left.
type Frame struct {
	Origin r2.Vec
	toWind r2.Rotation
	toMap  r2.Rotation
}

// NewFrame builds the frame for a wind blowing from the bearing windFrom,
// in degrees clockwise from north.
func NewFrame(origin r2.Vec, windFrom float64) Frame {
	rad := windFrom * math.Pi / 180
	downwind := math.Atan2(-math.Cos(rad), -math.Sin(rad))
	return Frame{
		Origin: origin,
		toWind: r2.NewRotation(-downwind, r2.Vec{}),
		toMap:  r2.NewRotation(downwind, r2.Vec{}),
	}
}

// ToWind converts a map point to the wind frame.
func (f Frame) ToWind(p r2.Vec) r2.Vec {
	return f.toWind.Rotate(r2.Sub(p, f.Origin))
}

// ToMap converts a wind-frame point to map coordinates.
func (f Frame) ToMap(p r2.Vec) r2.Vec {
	return r2.Add(f.toMap.Rotate(p), f.Origin)
}
