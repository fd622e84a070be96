package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Bucket is one histogram bin covering [Lo, Hi).
type Bucket struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram bins values into equal-width buckets spanning the observed
// minimum and maximum. Non-finite values are ignored. When every value is
// equal the result is a single bucket of width 1 centred on it; no values
// gives nil.
func Histogram(values []float64, bins int) []Bucket {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return nil
	}
	if bins < 1 {
		bins = 1
	}
	sort.Float64s(xs)

	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		return []Bucket{{Lo: lo - 0.5, Hi: lo + 0.5, Count: len(xs)}}
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the top bucket is closed so the maximum lands in it
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)

	out := make([]Bucket, bins)
	for i := range out {
		out[i] = Bucket{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return out
}

// Peak returns the index of the fullest bucket, or -1.
func Peak(buckets []Bucket) int {
	best := -1
	for i, b := range buckets {
		if best < 0 || b.Count > buckets[best].Count {
			best = i
		}
	}
	return best
}
