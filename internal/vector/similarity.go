// Package vector provides the catalog vector store and similarity helpers.
package vector

import "math"

// Cosine returns the cosine similarity of a and b: dot(a,b)/(|a|*|b|).
// Returns 0 when either vector has zero magnitude. Returns a
// DimensionMismatchError when the lengths differ.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionMismatchError{Want: len(a), Got: len(b)}
	}
	na := L2Norm(a)
	nb := L2Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return Dot(a, b) / (na * nb), nil
}

// Dot returns the inner product of two equal-length vectors.
func Dot(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// L2Norm returns the L2 norm of a vector.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}
