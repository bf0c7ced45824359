package fallout

import "math"

// DecayExponent is the exponent of the t^-1.2 fission product decay law.
const DecayExponent = 1.2

// DecayRate is the dose rate at t hours of activity whose rate at H+1 is r1.
func DecayRate(r1, t float64) float64 {
	return r1 * math.Pow(t, -DecayExponent)
}

// Accumulated integrates DecayRate from arrival to t. It is zero until
// arrival and never decreases with t.
func Accumulated(r1, arrival, t float64) float64 {
	if !(t > arrival) || r1 <= 0 {
		return 0
	}
	k := 1 - DecayExponent
	return r1 / -k * (math.Pow(arrival, k) - math.Pow(t, k))
}
