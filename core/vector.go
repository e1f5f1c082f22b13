package core

import "math"

// NormalizeVector returns a unit-length copy of v under the L2 norm.
// The input is never modified. Returns ErrInvalidVector for empty,
// all-zero, NaN or Inf vectors.
func NormalizeVector(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, ErrInvalidVector
	}

	var sum float64
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, ErrInvalidVector
		}
		sum += f * f
	}
	if sum == 0 || math.IsInf(sum, 0) {
		return nil, ErrInvalidVector
	}

	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out, nil
}

// DotProduct calculates the dot product of two vectors.
// For unit-norm vectors this equals their cosine similarity.
func DotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
