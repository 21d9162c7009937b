// Package cohesion scores how well each point sits inside its assigned cluster.
package cohesion

import (
	"errors"
	"fmt"
	"math"

	"github.com/objones25/vectrend/internal/similarity"
)

var (
	// ErrLabelMismatch is returned when embeddings and labels differ in length
	ErrLabelMismatch = errors.New("embeddings and labels must have the same length")

	// ErrInvalidLabel is returned for negative cluster labels
	ErrInvalidLabel = errors.New("cluster labels must be non-negative")
)

// Silhouette returns the silhouette score of every embedding given its cluster
// label. Scores lie in [-1, 1].
//
// A point alone in its cluster scores 0, and so does a point when no other
// cluster has members: in both cases one side of the comparison is undefined.
func Silhouette(embeddings [][]float64, labels []int) ([]float64, error) {
	if len(embeddings) != len(labels) {
		return nil, fmt.Errorf("%w: %d embeddings, %d labels", ErrLabelMismatch, len(embeddings), len(labels))
	}
	if len(embeddings) == 0 {
		return []float64{}, nil
	}

	if _, err := similarity.CheckDimensions(embeddings); err != nil {
		return nil, err
	}

	numClusters := 0
	for i, l := range labels {
		if l < 0 {
			return nil, fmt.Errorf("%w: label %d at index %d", ErrInvalidLabel, l, i)
		}
		if l+1 > numClusters {
			numClusters = l + 1
		}
	}

	members := make([][]int, numClusters)
	for i, l := range labels {
		members[l] = append(members[l], i)
	}

	scores := make([]float64, len(embeddings))
	for i := range embeddings {
		own := labels[i]
		if len(members[own]) < 2 {
			continue
		}

		a, err := meanDistance(embeddings, i, members[own])
		if err != nil {
			return nil, err
		}

		b := math.Inf(1)
		for c := 0; c < numClusters; c++ {
			if c == own || len(members[c]) == 0 {
				continue
			}
			d, err := meanDistance(embeddings, i, members[c])
			if err != nil {
				return nil, err
			}
			if d < b {
				b = d
			}
		}
		if math.IsInf(b, 1) {
			continue
		}

		scores[i] = score(a, b)
	}
	return scores, nil
}

// score applies the silhouette formula to a point's intra-cluster distance a and
// its nearest other-cluster distance b.
func score(a, b float64) float64 {
	switch {
	case a < b:
		return 1 - a/b
	case a > b:
		return b/a - 1
	default:
		return 0
	}
}

// meanDistance averages the distance from embeddings[i] to every listed member
// other than i itself.
func meanDistance(embeddings [][]float64, i int, members []int) (float64, error) {
	var sum float64
	count := 0
	for _, j := range members {
		if j == i {
			continue
		}
		d, err := similarity.Euclidean(embeddings[i], embeddings[j])
		if err != nil {
			return 0, fmt.Errorf("comparing points %d and %d: %w", i, j, err)
		}
		sum += d
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count), nil
}

// Mean returns the arithmetic mean of scores, or 0 for an empty slice.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
