// Package similarity provides the distance primitives shared by the
// partitioning and cohesion stages.
package similarity

import (
	"fmt"
	"math"
)

// Euclidean returns the Euclidean distance between a and b.
func Euclidean(a, b []float64) (float64, error) {
	sq, err := SquaredEuclidean(a, b)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(sq), nil
}

// SquaredEuclidean returns the squared Euclidean distance between a and b.
func SquaredEuclidean(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: got %d and %d", ErrDimensionMismatch, len(a), len(b))
	}
	return SquaredL2(a, b), nil
}

// AverageDistance returns the mean Euclidean distance from point to every entry of points.
func AverageDistance(point []float64, points [][]float64) (float64, error) {
	if len(points) == 0 {
		return 0, ErrEmptySet
	}
	var sum float64
	for _, p := range points {
		d, err := Euclidean(point, p)
		if err != nil {
			return 0, err
		}
		sum += d
	}
	return sum / float64(len(points)), nil
}

// CheckDimensions verifies that every vector has the same length and returns it.
func CheckDimensions(vectors [][]float64) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has %d components, want %d",
				ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}

// SquaredL2 is SquaredEuclidean without the length check, for hot loops whose
// callers validated dimensions up front. It assumes len(a) == len(b).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}
