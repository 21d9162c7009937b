// Package ranking groups scored records by cluster and orders the clusters by
// a cohesion-weighted size metric.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/objones25/vectrend/internal/record"
)

// ErrLengthMismatch is returned when assignments, scores and records differ in length
var ErrLengthMismatch = errors.New("assignments, scores and records must have the same length")

// Group is one cluster with its members and quality metrics.
type Group struct {
	ClusterID          int             `json:"clusterId"`
	Records            []record.Record `json:"records"`
	Count              int             `json:"count"`
	SilhouetteScores   []float64       `json:"silhouetteScores"`
	AvgSilhouetteScore float64         `json:"avgSilhouetteScore"`
	// CustomDensity is AvgSilhouetteScore * ln(Count). Singletons always get 0.
	CustomDensity float64 `json:"customDensity"`
}

// Rank groups records by their cluster assignment, in first-seen order, and
// returns the groups sorted by CustomDensity descending. Groups with equal
// density keep their first-seen order.
func Rank(assignments []int, scores []float64, records []record.Record) ([]Group, error) {
	if len(assignments) != len(scores) || len(assignments) != len(records) {
		return nil, fmt.Errorf("%w: %d assignments, %d scores, %d records",
			ErrLengthMismatch, len(assignments), len(scores), len(records))
	}

	groups := make([]*Group, 0)
	index := make(map[int]*Group)
	for i, clusterID := range assignments {
		g, ok := index[clusterID]
		if !ok {
			g = &Group{ClusterID: clusterID}
			index[clusterID] = g
			groups = append(groups, g)
		}
		g.Records = append(g.Records, records[i])
		g.SilhouetteScores = append(g.SilhouetteScores, scores[i])
		g.Count++
	}

	ranked := make([]Group, len(groups))
	for i, g := range groups {
		g.AvgSilhouetteScore = mean(g.SilhouetteScores)
		g.CustomDensity = Density(g.AvgSilhouetteScore, g.Count)
		ranked[i] = *g
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CustomDensity > ranked[j].CustomDensity
	})
	return ranked, nil
}

// Density is the ranking metric: average cohesion weighted by the log of the
// cluster size.
func Density(avgSilhouette float64, count int) float64 {
	if count <= 1 {
		return 0
	}
	return avgSilhouette * math.Log(float64(count))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Total returns the number of records across groups.
func Total(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}
