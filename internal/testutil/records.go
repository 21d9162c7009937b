package testutil

import (
	"fmt"
	"math/rand"

	"github.com/objones25/vectrend/internal/record"
)

// TwoSquares returns 8 two-dimensional records forming two groups of 4: a unit
// square at the origin and a square with the given side at (50, 50).
func TwoSquares(side float64) []record.Record {
	points := [][]float64{
		{0, 0}, {0, 1}, {1, 0}, {1, 1},
		{50, 50}, {50, 50 + side}, {50 + side, 50}, {50 + side, 50 + side},
	}
	records := make([]record.Record, len(points))
	for i, p := range points {
		group := "tight"
		if i >= 4 {
			group = "loose"
		}
		records[i] = record.Record{
			ID:     record.IntID(i),
			Text:   fmt.Sprintf("%s feedback %d", group, i),
			Vector: p,
		}
	}
	return records
}

// Topics generates numTopics groups of perTopic records in dimensions
// dimensions. Each topic is a random center with small noise around it.
func Topics(numTopics, perTopic, dimensions int, seed int64) []record.Record {
	rng := rand.New(rand.NewSource(seed))
	centers := make([][]float64, numTopics)
	for c := range centers {
		centers[c] = make([]float64, dimensions)
		for j := range centers[c] {
			centers[c][j] = rng.NormFloat64() * 10
		}
	}

	records := make([]record.Record, 0, numTopics*perTopic)
	for c, center := range centers {
		for i := 0; i < perTopic; i++ {
			vec := make([]float64, dimensions)
			for j := range vec {
				vec[j] = center[j] + rng.NormFloat64()*0.05
			}
			records = append(records, record.Record{
				ID:     record.StringID(fmt.Sprintf("t%d-%d", c, i)),
				Text:   fmt.Sprintf("topic %d item %d", c, i),
				Vector: vec,
			})
		}
	}
	return records
}

// Identical returns n records that all carry the same vector.
func Identical(n, dimensions int) []record.Record {
	records := make([]record.Record, n)
	for i := range records {
		vec := make([]float64, dimensions)
		for j := range vec {
			vec[j] = 0.5
		}
		records[i] = record.Record{ID: record.IntID(i), Text: "same", Vector: vec}
	}
	return records
}
