// Package partition assigns reduced vectors to a fixed number of clusters
// with seeded k-means++ and Lloyd's algorithm.
package partition

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/objones25/vectrend/internal/similarity"
)

var (
	// ErrEmptyInput is returned when there are no vectors to cluster
	ErrEmptyInput = errors.New("empty input vectors")

	// ErrInvalidK is returned when the cluster count is not positive
	ErrInvalidK = errors.New("k must be positive")
)

// Result is the outcome of a k-means run.
type Result struct {
	// Assignments holds the cluster id of every input vector, in input order
	Assignments []int
	Centroids   [][]float64
	Iterations  int
	// Converged reports whether assignments stopped changing before MaxIterations
	Converged bool
}

// KMeans clusters vectors into cfg.K groups. The same input and seed always
// produce the same assignments.
func KMeans(vectors [][]float64, cfg Config) (*Result, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}
	if cfg.K <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, cfg.K)
	}
	if _, err := similarity.CheckDimensions(vectors); err != nil {
		return nil, err
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultConfig().MaxIterations
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	centroids := seedPlusPlus(vectors, cfg.K, rng)

	assignments := make([]int, len(vectors))
	for i := range assignments {
		assignments[i] = -1
	}

	result := &Result{Assignments: assignments, Centroids: centroids}
	for result.Iterations < maxIter {
		result.Iterations++

		changed := false
		for i, vec := range vectors {
			best := nearest(vec, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		if !changed {
			result.Converged = true
			break
		}

		updateCentroids(vectors, assignments, centroids)
	}

	return result, nil
}

// seedPlusPlus picks k initial centroids: the first uniformly, each following one
// with probability proportional to its squared distance from the nearest chosen
// centroid.
func seedPlusPlus(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(vectors[rng.Intn(len(vectors))]))

	distances := make([]float64, len(vectors))
	for len(centroids) < k {
		var total float64
		for j, vec := range vectors {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				if d := similarity.SquaredL2(vec, c); d < minDist {
					minDist = d
				}
			}
			distances[j] = minDist
			total += minDist
		}

		// Every point already coincides with a centroid; duplicate one.
		if total == 0 {
			centroids = append(centroids, clone(vectors[rng.Intn(len(vectors))]))
			continue
		}

		target := rng.Float64() * total
		var sum float64
		chosen := len(vectors) - 1
		for j, dist := range distances {
			sum += dist
			if sum >= target && dist > 0 {
				chosen = j
				break
			}
		}
		centroids = append(centroids, clone(vectors[chosen]))
	}
	return centroids
}

// updateCentroids moves every centroid to the mean of its members. Centroids
// with no members stay where they are.
func updateCentroids(vectors [][]float64, assignments []int, centroids [][]float64) {
	dimensions := len(vectors[0])
	counts := make([]int, len(centroids))
	sums := make([][]float64, len(centroids))
	for i := range sums {
		sums[i] = make([]float64, dimensions)
	}

	for i, cluster := range assignments {
		counts[cluster]++
		for j, v := range vectors[i] {
			sums[cluster][j] += v
		}
	}

	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		for j := range centroids[c] {
			centroids[c][j] = sums[c][j] / float64(counts[c])
		}
	}
}

// nearest returns the index of the closest centroid; ties go to the lowest index.
func nearest(vec []float64, centroids [][]float64) int {
	minDist := math.MaxFloat64
	best := 0
	for c, centroid := range centroids {
		if d := similarity.SquaredL2(vec, centroid); d < minDist {
			minDist = d
			best = c
		}
	}
	return best
}

// FindNearest returns the closest centroid to vector.
func FindNearest(vector []float64, centroids [][]float64) (int, error) {
	if len(centroids) == 0 {
		return 0, ErrInvalidK
	}
	for _, c := range centroids {
		if len(c) != len(vector) {
			return 0, fmt.Errorf("%w: got %d, want %d",
				similarity.ErrDimensionMismatch, len(vector), len(c))
		}
	}
	return nearest(vector, centroids), nil
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
