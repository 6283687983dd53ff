package analysis

import "math"

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func clampScore(x float64) float64 { return clamp(x, 0, 10) }

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, v := range xs {
		s += v
	}
	return s / float64(len(xs))
}

// stddev is the sample standard deviation; 0 for fewer than two values.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	ss := 0.0
	for _, v := range xs {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// ratio divides with a zero-denominator guard: no observations contribute
// nothing, they never crash the pipeline.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// thresholdScore maps a raw metric onto 0-10 using its configured medium and
// high cutoffs: 0 at zero, 5 at medium, 10 at or beyond high, linear in
// between. Monotone nondecreasing in value.
func thresholdScore(value, medium, high float64) float64 {
	switch {
	case value <= 0:
		return 0
	case value >= high:
		return 10
	case value >= medium:
		return 5 + 5*(value-medium)/(high-medium)
	default:
		return 5 * value / medium
	}
}
