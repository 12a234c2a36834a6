package domain

import "math"

// NormTolerance is the accepted deviation from unit length for stored and
// query vectors.
const NormTolerance = 1e-5

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// L2Normalize returns a copy of v scaled to unit length.
// A zero vector is returned unchanged.
func L2Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	n := Norm(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// IsUnit reports whether v is L2-normalized within NormTolerance.
func IsUnit(v []float32) bool {
	return math.Abs(Norm(v)-1) < NormTolerance
}

// Mean returns the elementwise mean of the given vectors.
// All vectors must share the same length; returns nil for empty input.
func Mean(vecs [][]float32) []float32 {
	if len(vecs) == 0 {
		return nil
	}
	out := make([]float32, len(vecs[0]))
	for _, v := range vecs {
		for i, x := range v {
			out[i] += x
		}
	}
	n := float32(len(vecs))
	for i := range out {
		out[i] /= n
	}
	return out
}
