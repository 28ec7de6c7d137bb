// Package stats provides the small statistics helpers used by the drift
// engine: arithmetic mean, sample standard deviation, and the three-sigma
// control band recorded on every score run.
package stats

import "math"

// sigmaMultiplier is the width of the control band in standard deviations.
const sigmaMultiplier = 3.0

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the sample standard deviation of values using an (n-1)
// divisor. With fewer than two values there is no spread to estimate and the
// result is 0.
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Band is a three-sigma control band.
type Band struct {
	Mean   float64
	StdDev float64
	UCL    float64
	LCL    float64
}

// ControlBand computes the control band over prior scores. With fewer than
// two prior runs there is no spread to estimate, so the mean falls back to
// fallback (the new score) and the band collapses onto it. LCL is clamped at
// zero: scores cannot go negative.
func ControlBand(prior []float64, fallback float64) Band {
	mean := fallback
	if len(prior) >= 2 {
		mean = Mean(prior)
	}
	sd := StdDev(prior)
	return Band{
		Mean:   mean,
		StdDev: sd,
		UCL:    mean + sigmaMultiplier*sd,
		LCL:    math.Max(0, mean-sigmaMultiplier*sd),
	}
}
