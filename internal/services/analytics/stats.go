package analytics

import "math"

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStd is the N-1 denominator standard deviation. Callers guard for
// len(xs) >= 2.
func sampleStd(xs []float64) float64 {
	m := meanOf(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	v := ss / float64(len(xs)-1)
	if v < 0 {
		v = 0
	}
	return math.Sqrt(v)
}

// percentileLinear is the empirical quantile with linear interpolation
// between order statistics. xs must be sorted ascending and non-empty;
// q in [0,1].
func percentileLinear(xs []float64, q float64) float64 {
	n := len(xs)
	if n == 1 {
		return xs[0]
	}
	rank := q * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return xs[lo]
	}
	frac := rank - float64(lo)
	return xs[lo] + (xs[hi]-xs[lo])*frac
}

// covariance is the N-1 denominator sample covariance of two equal-length
// slices. Callers guard for len >= 2.
func covariance(xs, ys []float64) float64 {
	mx, my := meanOf(xs), meanOf(ys)
	var sum float64
	for i := range xs {
		sum += (xs[i] - mx) * (ys[i] - my)
	}
	return sum / float64(len(xs)-1)
}
